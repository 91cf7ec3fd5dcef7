package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSCCComponents(t *testing.T) {
	scc := _sampleGraph.SCC([]int{0})

	same := func(a, b int) bool { return scc.ComponentOf(a) == scc.ComponentOf(b) }

	assert.True(t, same(0, 1))
	assert.True(t, same(1, 4))
	assert.True(t, same(2, 3))
	assert.True(t, same(3, 7))
	assert.True(t, same(5, 6))
	assert.False(t, same(0, 2))
	assert.False(t, same(9, 10))
	assert.Equal(t, -1, scc.ComponentOf(42))

	// Edges only lead to components with a smaller or equal index.
	for node, succs := range edges {
		for _, succ := range succs {
			assert.LessOrEqual(t, scc.ComponentOf(succ), scc.ComponentOf(node),
				"%d -> %d", node, succ)
		}
	}
}

func TestSCCIsCyclic(t *testing.T) {
	selfLoop := Of(func(i int) []int {
		return map[int][]int{0: {1}, 1: {1, 2}}[i]
	})
	scc := selfLoop.SCC([]int{0})

	assert.False(t, scc.IsCyclic(scc.ComponentOf(0)))
	assert.True(t, scc.IsCyclic(scc.ComponentOf(1)))
	assert.False(t, scc.IsCyclic(scc.ComponentOf(2)))
}
