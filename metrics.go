package main

import (
	"fmt"

	"github.com/cs-au-dk/absnum/analysis/lattice"
)

// summary aggregates the results of a batch of analyses.
type summary struct {
	functions  int
	incomplete int
	iterations int
	deadEdges  int
	outcomes   map[lattice.Outcome]int
}

func (s *summary) add(complete bool, iterations, deadEdges int, outcomes ...lattice.Outcome) {
	if s.outcomes == nil {
		s.outcomes = make(map[lattice.Outcome]int)
	}

	s.functions++
	if !complete {
		s.incomplete++
	}
	s.iterations += iterations
	s.deadEdges += deadEdges
	for _, o := range outcomes {
		s.outcomes[o]++
	}
}

// violated reports whether some reachable assertion definitely fails.
func (s *summary) violated() bool {
	return s.outcomes[lattice.OutcomeFalse] > 0
}

func (s *summary) String() string {
	msg := "================ Results =====================\n\n"
	msg += fmt.Sprintf("Functions: %d (%d incomplete)\n", s.functions, s.incomplete)
	msg += fmt.Sprintf("Iterations: %d\n", s.iterations)
	msg += fmt.Sprintf("Dead edges: %d\n", s.deadEdges)
	msg += fmt.Sprintf("Assertions: %s %d, %s %d, %s %d, %s %d\n",
		holds("holds"), s.outcomes[lattice.OutcomeTrue],
		fails("fails"), s.outcomes[lattice.OutcomeFalse],
		unknown("may fail"), s.outcomes[lattice.OutcomeTop],
		unreachable("unreachable"), s.outcomes[lattice.OutcomeBottom])
	return msg
}
