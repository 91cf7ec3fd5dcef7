package numeric

import (
	L "github.com/cs-au-dk/absnum/analysis/lattice"
)

// dbm is a difference-bound matrix over the dimensions 0..n-1. Entry (i, j)
// bounds x_i - x_j from above. Dimension 0 is the constant 0, so (i, 0) is
// the upper bound of x_i and (0, i) the negated lower bound.
//
// Entries are finite bounds or ∞. Matrices are never modified once shared.
type dbm struct {
	n int
	m []L.Bound
}

var inf L.Bound = L.PlusInfinity{}

// newDBM creates the unconstrained matrix with n dimensions.
func newDBM(n int) dbm {
	d := dbm{n: n, m: make([]L.Bound, n*n)}
	for i := range d.m {
		d.m[i] = inf
	}
	for i := 0; i < n; i++ {
		d.m[i*n+i] = L.FiniteBound(0)
	}
	return d
}

func (d dbm) at(i, j int) L.Bound { return d.m[i*d.n+j] }

func (d dbm) set(i, j int, b L.Bound) { d.m[i*d.n+j] = b }

// tighten sets (i, j) to the minimum of its bound and b.
func (d dbm) tighten(i, j int, b L.Bound) {
	if b.Lt(d.at(i, j)) {
		d.set(i, j, b)
	}
}

func (d dbm) clone() dbm {
	return dbm{n: d.n, m: append([]L.Bound(nil), d.m...)}
}

// extend adds k unconstrained dimensions at the end.
func (d dbm) extend(k int) dbm {
	res := newDBM(d.n + k)
	for i := 0; i < d.n; i++ {
		for j := 0; j < d.n; j++ {
			res.set(i, j, d.at(i, j))
		}
	}
	return res
}

// close computes the shortest-path closure with Floyd-Warshall. Returns
// false if the constraints are unsatisfiable.
func (d dbm) close() (dbm, bool) {
	res := d.clone()
	for k := 0; k < res.n; k++ {
		for i := 0; i < res.n; i++ {
			ik := res.at(i, k)
			if ik.IsInfinite() {
				continue
			}
			for j := 0; j < res.n; j++ {
				if kj := res.at(k, j); !kj.IsInfinite() {
					res.tighten(i, j, ik.Plus(kj))
				}
			}
		}
	}
	for i := 0; i < res.n; i++ {
		if res.at(i, i).Lt(L.FiniteBound(0)) {
			return res, false
		}
	}
	return res, true
}

// forget removes all constraints on dimension i. On a closed matrix this
// is existential projection and the result remains closed.
func (d dbm) forget(i int) dbm {
	res := d.clone()
	for j := 0; j < res.n; j++ {
		if j != i {
			res.set(i, j, inf)
			res.set(j, i, inf)
		}
	}
	return res
}

// drop removes dimension i, renumbering the following ones.
func (d dbm) drop(i int) dbm {
	return d.permute(d.n-1, func(k int) int {
		if k >= i {
			return k + 1
		}
		return k
	})
}

// permute builds an n-dimensional matrix where dimension k of the result is
// dimension from(k) of d. Negative sources are unconstrained.
func (d dbm) permute(n int, from func(int) int) dbm {
	res := newDBM(n)
	for i := 0; i < n; i++ {
		fi := from(i)
		if fi < 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if fj := from(j); fj >= 0 && i != j {
				res.set(i, j, d.at(fi, fj))
			}
		}
	}
	return res
}

// leq is the entry-wise order. Both matrices should be closed.
func (d dbm) leq(o dbm) bool {
	for k := range d.m {
		if !d.m[k].Leq(o.m[k]) {
			return false
		}
	}
	return true
}

func (d dbm) zip(o dbm, f func(a, b L.Bound) L.Bound) dbm {
	res := dbm{n: d.n, m: make([]L.Bound, len(d.m))}
	for k := range d.m {
		res.m[k] = f(d.m[k], o.m[k])
	}
	return res
}

// join is the entry-wise maximum. Preserves closure.
func (d dbm) join(o dbm) dbm {
	return d.zip(o, L.Bound.Max)
}

// meet is the entry-wise minimum. The result needs closing.
func (d dbm) meet(o dbm) dbm {
	return d.zip(o, L.Bound.Min)
}

// widen computes prev ∇ d: stable entries are kept, and entries that grew
// jump to the next landmark. The result must not be closed before the next
// widening step, or the iteration may not terminate.
func (d dbm) widen(prev dbm, ts L.Thresholds) dbm {
	return d.zip(prev, func(cur, prev L.Bound) L.Bound {
		if cur.Leq(prev) {
			return prev
		}
		return ts.Above(cur)
	})
}

// narrow computes prev Δ d, refining only the entries of prev that open
// deems unbounded.
func (d dbm) narrow(prev dbm, open func(L.Bound) bool) dbm {
	return d.zip(prev, func(cur, prev L.Bound) L.Bound {
		if open(prev) {
			return cur
		}
		return prev
	})
}

// isTop checks that no entry outside the diagonal is bounded.
func (d dbm) isTop() bool {
	for i := 0; i < d.n; i++ {
		for j := 0; j < d.n; j++ {
			if i != j && !d.at(i, j).IsInfinite() {
				return false
			}
		}
	}
	return true
}

// interval reads the bounds of dimension i relative to 0.
func (d dbm) interval(i int) L.Interval {
	return L.NewInterval(d.at(0, i).Neg(), d.at(i, 0))
}

// constrain restricts dimension i to the interval.
func (d dbm) constrain(i int, itv L.Interval) {
	if !itv.High().IsInfinite() {
		d.tighten(i, 0, itv.High())
	}
	if !itv.Low().IsInfinite() {
		d.tighten(0, i, itv.Low().Neg())
	}
}
