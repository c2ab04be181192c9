package di

import "github.com/kbukum/scopekit/dag"

// Lifetime controls how long a constructed instance is reused.
type Lifetime = dag.Lifetime

const (
	Transient = dag.Transient
	Singleton = dag.Singleton
	Scoped    = dag.Scoped
)

// ParseLifetime parses "singleton", "scoped" or "transient".
func ParseLifetime(s string) (Lifetime, error) {
	return dag.ParseLifetime(s)
}
