package di

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/scopekit/dag"
	apperrors "github.com/kbukum/scopekit/errors"
)

// ValidationReport lists every defect found in a dependency graph. Unused
// services are informational and do not make the report fail.
type ValidationReport struct {
	Cycles                 []dag.Cycle   `json:"cycles"`
	CaptiveDependencies    []dag.Captive `json:"captive_dependencies"`
	UnusedServices         []string      `json:"unused_services"`
	UnresolvedDependencies []dag.Missing `json:"unresolved_dependencies"`
}

// ValidateGraph runs the cycle, captive, unresolved and unused checks on g.
func ValidateGraph(g *dag.Graph, policy dag.Policy) *ValidationReport {
	return &ValidationReport{
		Cycles:                 orEmpty(dag.FindCycles(g)),
		CaptiveDependencies:    orEmpty(dag.FindCaptiveDependencies(g, policy)),
		UnusedServices:         orEmpty(dag.FindUnused(g)),
		UnresolvedDependencies: orEmpty(g.Unresolved()),
	}
}

// Validate checks the container's graph using its captive policy.
func (c *Container) Validate() *ValidationReport {
	return ValidateGraph(c.graph, c.opts.policy)
}

// OK reports whether the graph has no cycles, captive or unresolved
// dependencies.
func (r *ValidationReport) OK() bool {
	return len(r.Cycles) == 0 && len(r.CaptiveDependencies) == 0 && len(r.UnresolvedDependencies) == 0
}

// Errors converts every failing finding into an error.
func (r *ValidationReport) Errors() []error {
	var errs []error
	for _, c := range r.Cycles {
		errs = append(errs, apperrors.CycleDetected(c.Path))
	}
	for _, c := range r.CaptiveDependencies {
		errs = append(errs, apperrors.CaptiveDependency(c.Root, c.Consumer, c.Dependency, c.Path))
	}
	for _, m := range r.UnresolvedDependencies {
		errs = append(errs, apperrors.UnresolvedDependency(m.Consumer, m.Dependency))
	}
	return errs
}

// Err joins Errors, or returns nil when the report is OK.
func (r *ValidationReport) Err() error {
	return errors.Join(r.Errors()...)
}

func (r *ValidationReport) String() string {
	var sb strings.Builder
	for _, c := range r.Cycles {
		fmt.Fprintf(&sb, "cycle: %s\n", c)
	}
	for _, c := range r.CaptiveDependencies {
		fmt.Fprintf(&sb, "captive: %s\n", c)
	}
	for _, m := range r.UnresolvedDependencies {
		fmt.Fprintf(&sb, "unresolved: %s depends on %s\n", m.Consumer, m.Dependency)
	}
	for _, k := range r.UnusedServices {
		fmt.Fprintf(&sb, "unused: %s\n", k)
	}
	if sb.Len() == 0 {
		return "ok\n"
	}
	return sb.String()
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
