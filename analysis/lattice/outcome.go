package lattice

// Outcome is the answer to a query on an abstract state. It is a member of
// the flat lattice
//
//	      ⊤
//	    /   \
//	 True   False
//	    \   /
//	      ⊥
//
// where ⊤ means "may be either" and ⊥ means the query point is unreachable.
type Outcome uint8

const (
	OutcomeBottom Outcome = iota
	OutcomeTrue
	OutcomeFalse
	OutcomeTop
)

// OutcomeOf lifts a concrete truth value.
func OutcomeOf(b bool) Outcome {
	if b {
		return OutcomeTrue
	}
	return OutcomeFalse
}

func (o Outcome) String() string {
	switch o {
	case OutcomeBottom:
		return colorize.Element("⊥")
	case OutcomeTrue:
		return colorize.Const("true")
	case OutcomeFalse:
		return colorize.Const("false")
	case OutcomeTop:
		return colorize.Element("⊤")
	}
	panic(errPatternMatch(uint8(o)))
}

// IsBot is true for ⊥.
func (o Outcome) IsBot() bool { return o == OutcomeBottom }

// IsTop is true for ⊤.
func (o Outcome) IsTop() bool { return o == OutcomeTop }

// Bool unpacks a definite outcome.
func (o Outcome) Bool() (value bool, definite bool) {
	switch o {
	case OutcomeTrue:
		return true, true
	case OutcomeFalse:
		return false, true
	}
	return false, false
}

// Leq computes o1 ⊑ o2.
func (o1 Outcome) Leq(o2 Outcome) bool {
	return o1 == o2 || o1 == OutcomeBottom || o2 == OutcomeTop
}

// Join computes o1 ⊔ o2.
func (o1 Outcome) Join(o2 Outcome) Outcome {
	switch {
	case o1.Leq(o2):
		return o2
	case o2.Leq(o1):
		return o1
	}
	return OutcomeTop
}

// Meet computes o1 ⊓ o2.
func (o1 Outcome) Meet(o2 Outcome) Outcome {
	switch {
	case o1.Leq(o2):
		return o1
	case o2.Leq(o1):
		return o2
	}
	return OutcomeBottom
}

// Negate swaps True and False.
func (o Outcome) Negate() Outcome {
	switch o {
	case OutcomeTrue:
		return OutcomeFalse
	case OutcomeFalse:
		return OutcomeTrue
	}
	return o
}

// And is the three-valued conjunction. ⊥ is absorbing.
func (o1 Outcome) And(o2 Outcome) Outcome {
	switch {
	case o1.IsBot() || o2.IsBot():
		return OutcomeBottom
	case o1 == OutcomeFalse || o2 == OutcomeFalse:
		return OutcomeFalse
	case o1 == OutcomeTrue && o2 == OutcomeTrue:
		return OutcomeTrue
	}
	return OutcomeTop
}

// Or is the three-valued disjunction. ⊥ is absorbing.
func (o1 Outcome) Or(o2 Outcome) Outcome {
	return o1.Negate().And(o2.Negate()).Negate()
}
