package dag

// Spec is one registration as seen by the graph builder.
type Spec struct {
	Key          string
	Lifetime     Lifetime
	Dependencies []string
}

// Node is a single implementation of a contract.
type Node struct {
	// ID is the node's index in the graph arena.
	ID int `json:"id"`
	// Key is the contract the node implements.
	Key string `json:"key"`
	// Index is the position among implementations of the same contract.
	Index        int      `json:"index"`
	Lifetime     Lifetime `json:"lifetime"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Edge represents a dependency: From requires To. Both are node IDs.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Missing is a declared dependency that names no registered contract.
type Missing struct {
	Consumer   string `json:"consumer"`
	Dependency string `json:"dependency"`
}

// Graph is an immutable dependency graph built from a set of specs.
type Graph struct {
	nodes      []Node
	out        [][]int
	byKey      map[string][]int
	keys       []string
	roots      []string
	unresolved []Missing
}

// Build creates a graph from specs in registration order. Roots are the
// contracts the host resolves directly; they seed FindUnused.
// Build is deterministic: the same input yields the same node IDs and edge order.
func Build(specs []Spec, roots []string) *Graph {
	g := &Graph{
		nodes: make([]Node, 0, len(specs)),
		out:   make([][]int, len(specs)),
		byKey: make(map[string][]int),
		roots: append([]string(nil), roots...),
	}

	for i, s := range specs {
		if _, seen := g.byKey[s.Key]; !seen {
			g.keys = append(g.keys, s.Key)
		}
		g.nodes = append(g.nodes, Node{
			ID:           i,
			Key:          s.Key,
			Index:        len(g.byKey[s.Key]),
			Lifetime:     s.Lifetime,
			Dependencies: append([]string(nil), s.Dependencies...),
		})
		g.byKey[s.Key] = append(g.byKey[s.Key], i)
	}

	for i, s := range specs {
		seen := make(map[string]bool, len(s.Dependencies))
		for _, dep := range s.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true

			targets, ok := g.byKey[dep]
			if !ok {
				g.unresolved = append(g.unresolved, Missing{Consumer: s.Key, Dependency: dep})
				continue
			}
			g.out[i] = append(g.out[i], targets...)
		}
	}

	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given ID.
func (g *Graph) Node(id int) Node { return g.nodes[id] }

// Nodes returns a copy of all nodes in ID order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Successors returns the IDs of the nodes id depends on.
func (g *Graph) Successors(id int) []int {
	return append([]int(nil), g.out[id]...)
}

// Implementations returns the node IDs registered under key.
func (g *Graph) Implementations(key string) []int {
	return append([]int(nil), g.byKey[key]...)
}

// Keys returns each distinct contract once, in first-registration order.
func (g *Graph) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Roots returns the declared root contracts.
func (g *Graph) Roots() []string {
	return append([]string(nil), g.roots...)
}

// Unresolved returns dependencies that name no registered contract.
func (g *Graph) Unresolved() []Missing {
	return append([]Missing(nil), g.unresolved...)
}

// Edges returns every edge in node order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, targets := range g.out {
		for _, to := range targets {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

func (g *Graph) pathKeys(ids []int) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = g.nodes[id].Key
	}
	return keys
}
