package conceptgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/studyloop/internal/ids"
)

var (
	// ErrCycle is returned by operations that require an acyclic graph.
	ErrCycle = errors.New("prerequisite cycle")

	// ErrUnknownConcept is returned when a referenced concept is not in the graph.
	ErrUnknownConcept = errors.New("unknown concept")
)

// CycleError carries the closed loop that blocked an operation.
type CycleError struct {
	Cycle []ids.ConceptID
}

func (e *CycleError) Error() string {
	return "cycle detected: " + formatPath(e.Cycle)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// AdjacencyMap maps a concept to the concepts adjacent to it in one direction.
type AdjacencyMap map[ids.ConceptID][]ids.ConceptID

// BuildPrerequisiteMap maps each concept to its prerequisites.
func BuildPrerequisiteMap(nodes []ConceptNode) AdjacencyMap {
	m := make(AdjacencyMap, len(nodes))
	for i := range nodes {
		m[nodes[i].ID] = append(m[nodes[i].ID], nodes[i].Prerequisites...)
	}
	return m
}

// BuildDependentMap maps each concept to the concepts that require it.
func BuildDependentMap(nodes []ConceptNode) AdjacencyMap {
	m := make(AdjacencyMap, len(nodes))
	for i := range nodes {
		for _, prereqID := range nodes[i].Prerequisites {
			m[prereqID] = append(m[prereqID], nodes[i].ID)
		}
	}
	return m
}

// Graph is a read-only view over a concept node set with precomputed
// adjacency. A Graph never mutates the nodes it was built from and is safe
// for concurrent use.
type Graph struct {
	nodes      []ConceptNode
	byID       map[ids.ConceptID]int
	prereqs    AdjacencyMap
	dependents AdjacencyMap
}

// New builds a Graph over a copy of nodes. The node set is not validated;
// call Validate before trusting derived structures.
func New(nodes []ConceptNode) *Graph {
	g := &Graph{
		nodes: slices.Clone(nodes),
		byID:  make(map[ids.ConceptID]int, len(nodes)),
	}
	for i := range g.nodes {
		if _, dup := g.byID[g.nodes[i].ID]; !dup {
			g.byID[g.nodes[i].ID] = i
		}
	}
	g.prereqs = BuildPrerequisiteMap(g.nodes)
	g.dependents = BuildDependentMap(g.nodes)
	return g
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns a copy of the node list in input order.
func (g *Graph) Nodes() []ConceptNode {
	return slices.Clone(g.nodes)
}

// Has reports whether id names a node in the graph.
func (g *Graph) Has(id ids.ConceptID) bool {
	_, ok := g.byID[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id ids.ConceptID) (ConceptNode, bool) {
	i, ok := g.byID[id]
	if !ok {
		return ConceptNode{}, false
	}
	return g.nodes[i], true
}

// Prerequisites returns the direct prerequisite ids of id.
func (g *Graph) Prerequisites(id ids.ConceptID) []ids.ConceptID {
	return slices.Clone(g.prereqs[id])
}

// Dependents returns the ids that directly require id.
func (g *Graph) Dependents(id ids.ConceptID) []ids.ConceptID {
	return slices.Clone(g.dependents[id])
}

// WouldCreateCycle reports whether adding the edge "from requires to" would
// close a cycle, i.e. whether to already reaches from through existing
// prerequisite edges. A self edge always closes a cycle.
func (g *Graph) WouldCreateCycle(from, to ids.ConceptID) bool {
	if from == to {
		return true
	}
	seen := IDSet{to: {}}
	queue := []ids.ConceptID{to}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.prereqs[id] {
			if next == from {
				return true
			}
			if seen.Has(next) {
				continue
			}
			seen.add(next)
			queue = append(queue, next)
		}
	}
	return false
}

// DetectCycles runs a depth-first search over prerequisite edges and returns
// one closed loop per back-edge found, e.g. [a b c a]. Nodes and their
// prerequisites are visited in input order so the result is deterministic.
func (g *Graph) DetectCycles() [][]ids.ConceptID {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[ids.ConceptID]int, len(g.nodes))
	stackPos := make(map[ids.ConceptID]int)
	var stack []ids.ConceptID
	var cycles [][]ids.ConceptID

	var visit func(id ids.ConceptID)
	visit = func(id ids.ConceptID) {
		state[id] = onStack
		stackPos[id] = len(stack)
		stack = append(stack, id)

		for _, prereqID := range g.prereqs[id] {
			if !g.Has(prereqID) {
				continue
			}
			switch state[prereqID] {
			case unvisited:
				visit(prereqID)
			case onStack:
				loop := slices.Clone(stack[stackPos[prereqID]:])
				cycles = append(cycles, append(loop, prereqID))
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, id)
		state[id] = done
	}

	for i := range g.nodes {
		if state[g.nodes[i].ID] == unvisited {
			visit(g.nodes[i].ID)
		}
	}
	return cycles
}

// Levels computes each node's depth in the prerequisite DAG: 0 for nodes
// without prerequisites, otherwise one more than the deepest prerequisite.
// Prerequisites that are not in the graph are ignored. If a cycle is reached
// no levels are returned and the error is a *CycleError.
func (g *Graph) Levels() (map[ids.ConceptID]int, error) {
	levels := make(map[ids.ConceptID]int, len(g.nodes))
	visiting := make(map[ids.ConceptID]int)
	var path []ids.ConceptID

	var level func(id ids.ConceptID) (int, error)
	level = func(id ids.ConceptID) (int, error) {
		if l, ok := levels[id]; ok {
			return l, nil
		}
		if at, ok := visiting[id]; ok {
			loop := slices.Clone(path[at:])
			return 0, &CycleError{Cycle: append(loop, id)}
		}
		visiting[id] = len(path)
		path = append(path, id)

		l := 0
		for _, prereqID := range g.prereqs[id] {
			if !g.Has(prereqID) {
				continue
			}
			pl, err := level(prereqID)
			if err != nil {
				return 0, err
			}
			l = max(l, pl+1)
		}

		path = path[:len(path)-1]
		delete(visiting, id)
		levels[id] = l
		return l, nil
	}

	for i := range g.nodes {
		if _, err := level(g.nodes[i].ID); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// TopologicalSort orders nodes by level, then by name. Ties keep input order.
func (g *Graph) TopologicalSort() ([]ConceptNode, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(g.nodes)
	slices.SortStableFunc(sorted, func(a, b ConceptNode) int {
		if levels[a.ID] != levels[b.ID] {
			return levels[a.ID] - levels[b.ID]
		}
		return strings.Compare(a.Name, b.Name)
	})
	return sorted, nil
}

// Ancestors returns every concept id reachable from id through prerequisite
// edges, excluding id itself.
func (g *Graph) Ancestors(id ids.ConceptID) IDSet {
	return closure(id, g.prereqs, -1)
}

// Descendants returns every concept id that transitively requires id,
// excluding id itself.
func (g *Graph) Descendants(id ids.ConceptID) IDSet {
	return closure(id, g.dependents, -1)
}

// closure walks adj breadth-first from start for at most depth hops
// (unbounded when depth < 0).
func closure(start ids.ConceptID, adj AdjacencyMap, depth int) IDSet {
	out := make(IDSet)
	frontier := []ids.ConceptID{start}
	for hop := 0; len(frontier) > 0 && (depth < 0 || hop < depth); hop++ {
		var next []ids.ConceptID
		for _, id := range frontier {
			for _, n := range adj[id] {
				if n == start || out.Has(n) {
					continue
				}
				out.add(n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return out
}

// Neighborhood is an induced subgraph around a center concept.
type Neighborhood struct {
	Center ids.ConceptID
	Nodes  []ConceptNode
	Edges  []Edge
}

// Neighborhood collects the center, its ancestors up to ancestorDepth hops
// and its descendants up to descendantDepth hops. Only edges with both
// endpoints inside the neighborhood are returned.
func (g *Graph) Neighborhood(center ids.ConceptID, ancestorDepth, descendantDepth int) (Neighborhood, error) {
	if !g.Has(center) {
		return Neighborhood{}, fmt.Errorf("neighborhood of %q: %w", center, ErrUnknownConcept)
	}
	included := IDSet{center: {}}
	for id := range closure(center, g.prereqs, max(ancestorDepth, 0)) {
		if g.Has(id) {
			included.add(id)
		}
	}
	for id := range closure(center, g.dependents, max(descendantDepth, 0)) {
		if g.Has(id) {
			included.add(id)
		}
	}

	nb := Neighborhood{Center: center}
	emitted := make(IDSet, len(included))
	seenEdge := make(map[Edge]bool)
	for i := range g.nodes {
		n := g.nodes[i]
		if !included.Has(n.ID) || emitted.Has(n.ID) {
			continue
		}
		emitted.add(n.ID)
		nb.Nodes = append(nb.Nodes, n)
		for _, prereqID := range g.prereqs[n.ID] {
			e := Edge{From: n.ID, To: prereqID}
			if included.Has(prereqID) && !seenEdge[e] {
				seenEdge[e] = true
				nb.Edges = append(nb.Edges, e)
			}
		}
	}
	return nb, nil
}

func formatPath(path []ids.ConceptID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
