package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/scopekit/dag"
)

// GraphResult is the payload of the graph command.
type GraphResult struct {
	Manifest string     `json:"manifest"`
	Nodes    []dag.Node `json:"nodes"`
	Edges    []EdgeView `json:"edges"`
	// Levels is empty when the graph has a cycle.
	Levels [][]string `json:"levels"`
	Roots  []string   `json:"roots"`
}

// EdgeView is an edge between two implementations, by key and index.
type EdgeView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type graphOptions struct {
	includeDirs []string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:           "graph <manifest>",
		Short:         "Print the dependency graph and construction levels of a manifest",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.includeDirs, "include-dir", "I", nil, "additional directories searched for included manifests")

	return cmd
}

func runGraph(rootOpts *RootOptions, opts *graphOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(rootOpts, cmd)

	m, err := loadManifest(path, opts.includeDirs)
	if err != nil {
		return commandError(f, CodeLoadFailed, err)
	}
	g, err := m.Graph()
	if err != nil {
		return commandError(f, CodeLoadFailed, err)
	}

	levels, err := dag.BuildLevels(g)
	if err != nil {
		f.VerboseLog("no construction levels: %v", err)
		levels = [][]string{}
	}

	result := GraphResult{
		Manifest: m.Name,
		Nodes:    g.Nodes(),
		Edges:    []EdgeView{},
		Levels:   levels,
		Roots:    g.Roots(),
	}
	for _, e := range g.Edges() {
		result.Edges = append(result.Edges, EdgeView{From: nodeLabel(g, e.From), To: nodeLabel(g, e.To)})
	}

	if f.JSON() {
		return f.Success(result)
	}

	f.Printf("%s: %d service(s)\n", m.Name, g.Len())
	for _, n := range result.Nodes {
		line := fmt.Sprintf("  %s (%s)", nodeLabel(g, n.ID), n.Lifetime)
		if len(n.Dependencies) > 0 {
			line += " -> " + strings.Join(n.Dependencies, ", ")
		}
		f.Printf("%s\n", line)
	}
	if len(levels) == 0 {
		f.Printf("levels: none, the graph has a cycle\n")
	} else {
		f.Printf("levels:\n")
		for i, level := range levels {
			f.Printf("  %d: %s\n", i, strings.Join(level, ", "))
		}
	}
	if roots := g.Roots(); len(roots) > 0 {
		f.Printf("roots: %s\n", strings.Join(roots, ", "))
	}
	return nil
}

// nodeLabel names a node by key, with its index when the key has several
// implementations.
func nodeLabel(g *dag.Graph, id int) string {
	n := g.Node(id)
	if len(g.Implementations(n.Key)) > 1 {
		return fmt.Sprintf("%s[%d]", n.Key, n.Index)
	}
	return n.Key
}
