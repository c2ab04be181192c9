package dag

// FindUnused returns contracts that no declared root reaches, directly or
// transitively. Roots themselves are used. With no roots declared nothing is
// reported, since there is no entry point to measure against.
func FindUnused(g *Graph) []string {
	if len(g.roots) == 0 {
		return nil
	}

	reached := make([]bool, len(g.nodes))
	var queue []int
	for _, key := range g.roots {
		for _, id := range g.byKey[key] {
			if !reached[id] {
				reached[id] = true
				queue = append(queue, id)
			}
		}
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.out[v] {
			if !reached[w] {
				reached[w] = true
				queue = append(queue, w)
			}
		}
	}

	var unused []string
	for _, key := range g.keys {
		used := false
		for _, id := range g.byKey[key] {
			if reached[id] {
				used = true
				break
			}
		}
		if !used {
			unused = append(unused, key)
		}
	}
	return unused
}
