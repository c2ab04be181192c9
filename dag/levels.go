package dag

import "fmt"

// BuildLevels uses Kahn's algorithm to group contracts by dependency level.
// Level 0 holds contracts without registered dependencies; every later level
// depends only on earlier ones, so members of a level can be built in
// parallel. Multiple implementations of a contract share its level.
// Returns an error if a cycle is detected.
func BuildLevels(g *Graph) ([][]string, error) {
	inDegree := make(map[string]int, len(g.keys))
	dependents := make(map[string][]string) // dependency -> consumers

	for _, key := range g.keys {
		inDegree[key] = 0
	}

	for _, key := range g.keys {
		deps := make(map[string]bool)
		for _, id := range g.byKey[key] {
			for _, w := range g.out[id] {
				deps[g.nodes[w].Key] = true
			}
		}
		// Iterate keys, not the map, to keep level contents ordered.
		for _, dep := range g.keys {
			if !deps[dep] {
				continue
			}
			inDegree[key]++
			dependents[dep] = append(dependents[dep], key)
		}
	}

	var queue []string
	for _, key := range g.keys {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, key := range queue {
			for _, consumer := range dependents[key] {
				inDegree[consumer]--
				if inDegree[consumer] == 0 {
					next = append(next, consumer)
				}
			}
		}
		queue = next
	}

	if visited != len(g.keys) {
		return nil, fmt.Errorf("dag: cycle detected, processed %d of %d contracts", visited, len(g.keys))
	}

	return levels, nil
}
