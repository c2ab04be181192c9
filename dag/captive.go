package dag

import (
	"fmt"
	"strings"
)

// Policy selects how strictly captive dependencies are detected.
type Policy int

const (
	// PolicyStrict flags any path from a singleton to a scoped service.
	// Transients reached from a singleton take on the singleton's lifetime,
	// so singleton -> transient -> scoped is a violation.
	PolicyStrict Policy = iota
	// PolicyDirect flags only direct singleton -> scoped edges.
	PolicyDirect
)

// String returns the policy name used in configuration.
func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyDirect:
		return "direct"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses "strict" or "direct". An empty string is strict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "direct":
		return PolicyDirect, nil
	default:
		return 0, fmt.Errorf("dag: unknown captive policy %q", s)
	}
}

// Captive is an edge through which a singleton ends up holding a scoped service.
type Captive struct {
	// Root is the singleton that captures the dependency.
	Root string `json:"root"`
	// Consumer and Dependency form the violating edge.
	Consumer   string `json:"consumer"`
	Dependency string `json:"dependency"`
	// Path runs from Root to Dependency inclusive.
	Path []string `json:"path"`
}

// String renders the violation with its path.
func (c Captive) String() string {
	return fmt.Sprintf("%s captures scoped %s via %s", c.Root, c.Dependency, strings.Join(c.Path, " -> "))
}

// FindCaptiveDependencies walks from every singleton node and reports the
// first scoped node reached on each path. Other singletons end the walk since
// they are checked as roots of their own.
func FindCaptiveDependencies(g *Graph, policy Policy) []Captive {
	var found []Captive

	for root := range g.nodes {
		if g.nodes[root].Lifetime != Singleton {
			continue
		}

		visited := make([]bool, len(g.nodes))
		visited[root] = true

		var walk func(v int, path []int)
		walk = func(v int, path []int) {
			for _, w := range g.out[v] {
				switch g.nodes[w].Lifetime {
				case Scoped:
					full := append(append([]int(nil), path...), w)
					found = append(found, Captive{
						Root:       g.nodes[root].Key,
						Consumer:   g.nodes[v].Key,
						Dependency: g.nodes[w].Key,
						Path:       g.pathKeys(full),
					})
				case Transient:
					if policy != PolicyStrict || visited[w] {
						continue
					}
					visited[w] = true
					walk(w, append(append([]int(nil), path...), w))
				}
			}
		}
		walk(root, []int{root})
	}

	return found
}
