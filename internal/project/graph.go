package project

// Graph is the dependency-of relation over dotted module names (spec §3
// Project Graph): an edge A -> B means "A imports B". Two auxiliary
// structures ride along it: the set of edges belonging to at least one
// cycle, and the final topological order.
type Graph struct {
	edges map[string][]string
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{edges: map[string][]string{}}
}

// AddNode ensures a vertex exists even if it has no outgoing edges.
func (g *Graph) AddNode(m string) {
	if _, ok := g.edges[m]; !ok {
		g.edges[m] = nil
	}
}

// AddEdge records that `from` depends on `to`.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// Deps returns the direct dependencies of a module, in insertion order.
func (g *Graph) Deps(m string) []string { return g.edges[m] }

// hasPath reports whether there is a path from -> to using plain
// iterative DFS with a per-call visited set (spec §4.2 step 4).
func (g *Graph) hasPath(from, to string) bool {
	visited := map[string]bool{}
	stack := append([]string(nil), g.edges[from]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, g.edges[n]...)
	}
	return false
}

// CycleSet computes, for every edge A -> B, whether B can reach A again -
// i.e. the edge participates in a cycle (spec §4.2 step 4). Returned as
// the set of modules participating in at least one cycle (spec's
// "in-cycle set"), which is what topological ordering needs.
func (g *Graph) CycleSet() map[string]bool {
	inCycle := map[string]bool{}
	for from, deps := range g.edges {
		for _, to := range deps {
			if g.hasPath(to, from) {
				inCycle[from] = true
				inCycle[to] = true
			}
		}
	}
	return inCycle
}

// TopoSort returns modules in dependency order (dependencies precede
// dependents), tolerating cycles by appending in-cycle vertices in
// discovery order after the acyclic vertices (spec §4.2 step 5).
// Discovery order over the node set is made deterministic by sorting the
// module names once up front.
func (g *Graph) TopoSort(order []string) []string {
	inCycle := g.CycleSet()

	var result []string
	gray := map[string]bool{}
	done := map[string]bool{}

	var visit func(n string) bool
	visit = func(n string) bool {
		if done[n] {
			return true
		}
		if inCycle[n] {
			return true
		}
		if gray[n] {
			// A second visit while gray of a non-cyclic node is a resolver
			// invariant violation (RES003); it should be unreachable given
			// CycleSet already identified every cyclic vertex.
			return false
		}
		gray[n] = true
		for _, dep := range g.edges[n] {
			if !inCycle[dep] {
				visit(dep)
			}
		}
		gray[n] = false
		done[n] = true
		result = append(result, n)
		return true
	}

	for _, n := range order {
		if !inCycle[n] {
			visit(n)
		}
	}
	for _, n := range order {
		if inCycle[n] && !done[n] {
			done[n] = true
			result = append(result, n)
		}
	}

	return result
}
