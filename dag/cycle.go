package dag

import "strings"

// Cycle is a dependency loop. Path starts and ends with the same contract:
// ["a", "b", "a"]. A self-dependency is ["a", "a"].
type Cycle struct {
	Path []string `json:"path"`
}

// String renders the cycle as "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// Contains reports whether key takes part in the cycle.
func (c Cycle) Contains(key string) bool {
	for _, k := range c.Path {
		if k == key {
			return true
		}
	}
	return false
}

type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // finished
)

// FindCycles returns every cycle closed by a back edge during a depth-first
// traversal over all nodes. Traversal continues after a cycle is found, so
// independent cycles are all reported. Runs in O(V+E).
func FindCycles(g *Graph) []Cycle {
	var (
		cycles []Cycle
		marks  = make([]color, len(g.nodes))
		pos    = make([]int, len(g.nodes)) // index of a gray node on stack
		stack  = make([]int, 0, len(g.nodes))
	)

	var visit func(v int)
	visit = func(v int) {
		marks[v] = gray
		pos[v] = len(stack)
		stack = append(stack, v)

		for _, w := range g.out[v] {
			switch marks[w] {
			case white:
				visit(w)
			case gray:
				loop := append(append([]int(nil), stack[pos[w]:]...), w)
				cycles = append(cycles, Cycle{Path: g.pathKeys(loop)})
			}
		}

		stack = stack[:len(stack)-1]
		marks[v] = black
	}

	for v := range g.nodes {
		if marks[v] == white {
			visit(v)
		}
	}

	return cycles
}
