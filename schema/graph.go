package schema

import (
	"fmt"
	"strings"
)

// Graph is the dependency graph induced by single lazy relations between
// resources. Cycles are legal at resolution time (target thunks break the
// definition-order constraint); the graph exists for tooling — reporting
// mutual references and ordering resources for display or seeding.
type Graph struct {
	nodes map[string]*Descriptor
	edges map[string][]string // resource -> single-relation targets
}

// NewGraph builds the graph from a descriptor set. Edges come from
// KindSingle lazy fields only; collections fan out and would make every
// parent/child pair a cycle.
func NewGraph(descriptors map[string]*Descriptor) *Graph {
	g := &Graph{
		nodes: descriptors,
		edges: make(map[string][]string),
	}

	for name, d := range descriptors {
		for _, f := range d.LazyFields() {
			if f.Kind != KindSingle {
				continue
			}
			target, err := f.Resolve()
			if err != nil {
				continue
			}
			g.edges[name] = append(g.edges[name], target.Name())
		}
	}

	return g
}

// DetectCycles returns every cycle of single lazy relations
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	var dfs func(node string, path []string) bool
	dfs = func(node string, path []string) bool {
		visited[node] = true
		recursionStack[node] = true
		path = append(path, node)

		for _, neighbor := range g.edges[node] {
			if !visited[neighbor] {
				if dfs(neighbor, path) {
					return true
				}
			} else if recursionStack[neighbor] {
				cycleStart := -1
				for i, n := range path {
					if n == neighbor {
						cycleStart = i
						break
					}
				}
				if cycleStart >= 0 {
					cycle := make([]string, len(path)-cycleStart)
					copy(cycle, path[cycleStart:])
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		recursionStack[node] = false
		return false
	}

	for node := range g.nodes {
		if !visited[node] {
			dfs(node, []string{})
		}
	}

	return cycles
}

// TopologicalSort returns resources in dependency order (targets first).
// Fails when the single-relation graph is cyclic.
func (g *Graph) TopologicalSort() ([]string, error) {
	outDegree := make(map[string]int)
	for node := range g.nodes {
		outDegree[node] = len(g.edges[node])
	}

	reverseEdges := make(map[string][]string)
	for source, targets := range g.edges {
		for _, target := range targets {
			reverseEdges[target] = append(reverseEdges[target], source)
		}
	}

	queue := []string{}
	for node, degree := range outDegree {
		if degree == 0 {
			queue = append(queue, node)
		}
	}

	result := []string{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range reverseEdges[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		cycles := g.DetectCycles()
		if len(cycles) > 0 {
			return nil, fmt.Errorf("relation cycle detected: %s", formatCycles(cycles))
		}
		return nil, fmt.Errorf("relation cycle detected")
	}

	return result, nil
}

// Dependencies returns the direct single-relation targets of a resource
func (g *Graph) Dependencies(resource string) []string {
	deps, exists := g.edges[resource]
	if !exists {
		return []string{}
	}
	return deps
}

// Dependents returns the resources holding a single relation to the given
// resource
func (g *Graph) Dependents(resource string) []string {
	dependents := []string{}
	for node, deps := range g.edges {
		for _, dep := range deps {
			if dep == resource {
				dependents = append(dependents, node)
				break
			}
		}
	}
	return dependents
}

// formatCycles formats cycle information for error messages
func formatCycles(cycles [][]string) string {
	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(strings.Join(cycle, " -> "))
		b.WriteString(" -> ")
		b.WriteString(cycle[0])
	}
	return b.String()
}
