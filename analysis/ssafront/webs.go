package ssafront

import (
	uf "github.com/spakin/disjoint"
	"golang.org/x/tools/go/ssa"
)

// values lists the tracked parameters and registers of the function in
// definition order.
func (f *Function) values() (res []ssa.Value) {
	for _, p := range f.Fn.Params {
		if tracked(p) {
			res = append(res, p)
		}
	}
	for _, b := range f.Fn.Blocks {
		for _, instr := range b.Instrs {
			if v, ok := instr.(ssa.Value); ok && tracked(v) {
				res = append(res, v)
			}
		}
	}
	return
}

// Webs partitions the tracked values into φ-connected groups. A web
// usually gathers the SSA versions of one source-level variable.
func (f *Function) Webs() [][]ssa.Value {
	vals := f.values()
	elements := make(map[ssa.Value]*uf.Element, len(vals))
	for _, v := range vals {
		el := uf.NewElement()
		el.Data = v
		elements[v] = el
	}

	for _, v := range vals {
		phi, ok := v.(*ssa.Phi)
		if !ok {
			continue
		}
		for _, e := range phi.Edges {
			if el, found := elements[e]; found {
				uf.Union(elements[phi], el)
			}
		}
	}

	index := map[*uf.Element]int{}
	var webs [][]ssa.Value
	for _, v := range vals {
		rep := elements[v].Find()
		i, found := index[rep]
		if !found {
			i = len(webs)
			index[rep] = i
			webs = append(webs, nil)
		}
		webs[i] = append(webs[i], v)
	}
	return webs
}

// Names maps register names to the source-level name of their web, when
// one is known from a parameter or a φ-node.
func (f *Function) Names() map[string]string {
	names := map[string]string{}
	for _, web := range f.Webs() {
		name := ""
		for _, v := range web {
			switch v := v.(type) {
			case *ssa.Parameter:
				name = v.Name()
			case *ssa.Phi:
				if name == "" && v.Comment != "" {
					name = v.Comment
				}
			}
		}
		if name == "" {
			continue
		}
		for _, v := range web {
			names[v.Name()] = name
		}
	}
	return names
}
