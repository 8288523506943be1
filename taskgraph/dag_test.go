package taskgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDependencyAndSortOrdersParentsBeforeChildren(t *testing.T) {
	g := New()
	for _, id := range []uint32{1, 2, 3, 4} {
		g.AddTask(id)
	}
	require.NoError(t, g.AddDependency(2, 1)) // 2 depends on 1
	require.NoError(t, g.AddDependency(3, 1))
	require.NoError(t, g.AddDependency(4, 2))
	require.NoError(t, g.AddDependency(4, 3))

	order, err := g.Sort()
	require.NoError(t, err)
	assert.Len(t, order, 4)

	pos := make(map[uint32]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[1], pos[2])
	assert.Less(t, pos[1], pos[3])
	assert.Less(t, pos[2], pos[4])
	assert.Less(t, pos[3], pos[4])
}

func TestAddDependencyRejectsCycle(t *testing.T) {
	g := New()
	g.AddTask(1)
	g.AddTask(2)
	require.NoError(t, g.AddDependency(2, 1))
	err := g.AddDependency(1, 2)
	assert.Error(t, err)
}

func TestAddDependencyRejectsSelfDependency(t *testing.T) {
	g := New()
	g.AddTask(1)
	assert.Error(t, g.AddDependency(1, 1))
}

func TestAddDependencyRejectsUnknownParent(t *testing.T) {
	g := New()
	g.AddTask(1)
	assert.Error(t, g.AddDependency(1, 99))
}

func TestAddDependencyAutoRegistersUnknownChild(t *testing.T) {
	g := New()
	g.AddTask(1)
	require.NoError(t, g.AddDependency(99, 1))
	assert.Equal(t, 2, g.Size())
	assert.Equal(t, []uint32{1}, g.Dependencies(99))
}

func TestRemoveDependencyErasesLeafAndDecrementsDependents(t *testing.T) {
	g := New()
	g.AddTask(1)
	g.AddTask(2)
	require.NoError(t, g.AddDependency(2, 1)) // 2 depends on 1; 1 has no dependencies of its own

	require.NoError(t, g.RemoveDependency(1))
	assert.Equal(t, 1, g.Size())
	assert.Empty(t, g.Dependencies(2))

	order, err := g.Sort()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, order)
}

func TestRemoveDependencyRecursesThroughOwnDependencies(t *testing.T) {
	g := New()
	for _, id := range []uint32{1, 2, 3} {
		g.AddTask(id)
	}
	require.NoError(t, g.AddDependency(2, 1)) // 2 depends on 1
	require.NoError(t, g.AddDependency(3, 2)) // 3 depends on 2

	require.NoError(t, g.RemoveDependency(3))
	assert.Equal(t, 0, g.Size())
}

func TestRemoveDependencyUnknownTaskErrors(t *testing.T) {
	g := New()
	assert.Error(t, g.RemoveDependency(1))
}

func TestSortOnEmptyGraph(t *testing.T) {
	g := New()
	order, err := g.Sort()
	require.NoError(t, err)
	assert.Empty(t, order)
}
