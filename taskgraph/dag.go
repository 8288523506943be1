// Package taskgraph tracks dependency relationships between task
// identifiers (C9). The map-of-sets representation has no pack
// precedent — it is a design addition, not lifted from any example
// repo — chosen because the recursive-removal and topological-sort
// operations below both want O(1) child/parent-set lookups rather
// than the original source's parallel id-list/id-map pair.
package taskgraph

import "fmt"

// TaskDAG tracks which tasks depend on which others. A task with no
// recorded dependencies is itself a leaf.
type TaskDAG struct {
	tasks map[uint32]struct{}
	// deps[child] is the set of tasks that child depends on.
	deps map[uint32]map[uint32]struct{}
	// dependents[parent] is the set of tasks that depend on parent.
	dependents map[uint32]map[uint32]struct{}
}

// New returns an empty graph.
func New() *TaskDAG {
	return &TaskDAG{
		tasks:      make(map[uint32]struct{}),
		deps:       make(map[uint32]map[uint32]struct{}),
		dependents: make(map[uint32]map[uint32]struct{}),
	}
}

// AddTask registers id as a known node. Adding an already-known id is
// a no-op.
func (g *TaskDAG) AddTask(id uint32) {
	if _, ok := g.tasks[id]; ok {
		return
	}
	g.tasks[id] = struct{}{}
	g.deps[id] = make(map[uint32]struct{})
	g.dependents[id] = make(map[uint32]struct{})
}

// AddDependency records that child depends on parent: parent must
// complete before child runs. parent must already be known via
// AddTask — there is no dependency list to append to otherwise. child
// is auto-registered with in-degree 0 if not already known, matching
// §4.9's add_dependency wording ("insert the dep into the task map
// with in-degree 0") rather than requiring every dependency to have
// been pre-declared. Adding a dependency that would close a cycle is
// rejected — the source spec leaves cycle handling unaddressed, and
// silently accepting one would make Sort loop forever.
func (g *TaskDAG) AddDependency(child, parent uint32) error {
	if _, ok := g.tasks[parent]; !ok {
		return fmt.Errorf("taskgraph: unknown task %d", parent)
	}
	if child == parent {
		return fmt.Errorf("taskgraph: task %d cannot depend on itself", child)
	}
	if g.reachable(parent, child) {
		return fmt.Errorf("taskgraph: adding dependency %d -> %d would create a cycle", child, parent)
	}
	g.AddTask(child)

	g.deps[child][parent] = struct{}{}
	g.dependents[parent][child] = struct{}{}
	return nil
}

// reachable reports whether to is reachable from starting at from by
// following dependency edges forward (from depends on ... depends on
// to).
func (g *TaskDAG) reachable(from, to uint32) bool {
	if from == to {
		return true
	}
	visited := make(map[uint32]struct{})
	stack := []uint32{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}
		for parent := range g.deps[n] {
			stack = append(stack, parent)
		}
	}
	return false
}

// RemoveDependency removes id from the graph. If id has no dependencies
// of its own, it is erased outright and simply drops out of the
// dependency set of every task that depended on it. If id still has
// dependencies, those are removed first, recursively, before id itself
// is erased — matching §4.9's recursive-removal semantics. Removing an
// unknown id is an error.
func (g *TaskDAG) RemoveDependency(id uint32) error {
	if _, ok := g.tasks[id]; !ok {
		return fmt.Errorf("taskgraph: unknown task %d", id)
	}
	g.removeRecursive(id)
	return nil
}

func (g *TaskDAG) removeRecursive(id uint32) {
	for parent := range g.deps[id] {
		delete(g.dependents[parent], id)
		g.removeRecursive(parent)
	}
	for child := range g.dependents[id] {
		delete(g.deps[child], id)
	}
	delete(g.deps, id)
	delete(g.dependents, id)
	delete(g.tasks, id)
}

// Dependencies returns the set of tasks id directly depends on.
func (g *TaskDAG) Dependencies(id uint32) []uint32 {
	out := make([]uint32, 0, len(g.deps[id]))
	for p := range g.deps[id] {
		out = append(out, p)
	}
	return out
}

// Sort returns a topological ordering of all known tasks via Kahn's
// algorithm: parents always precede their dependents. Returns an error
// if the graph contains a cycle, which AddDependency should already
// have prevented, but Sort checks independently rather than trusting
// that invariant blindly.
func (g *TaskDAG) Sort() ([]uint32, error) {
	indegree := make(map[uint32]int, len(g.tasks))
	for id := range g.tasks {
		indegree[id] = len(g.deps[id])
	}

	var ready []uint32
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]uint32, 0, len(g.tasks))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for child := range g.dependents[n] {
			indegree[child]--
			if indegree[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(order) != len(g.tasks) {
		return nil, fmt.Errorf("taskgraph: cycle detected, sorted %d of %d tasks", len(order), len(g.tasks))
	}
	return order, nil
}

// Size returns the number of known tasks.
func (g *TaskDAG) Size() int { return len(g.tasks) }
