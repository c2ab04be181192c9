// Package dag models a service registration set as a dependency graph and
// runs the static analyses a container needs before it goes live.
//
// Nodes are stored in an arena (a slice) and edges are node indices, so the
// analyses are pure traversals over integers and never hold references to
// constructed services. A contract registered more than once contributes one
// node per implementation; an edge to that contract fans out to all of them.
//
// Analyses:
//   - FindCycles: three-color depth-first search, one Cycle per back edge
//   - FindCaptiveDependencies: singleton reachability into scoped services
//   - FindUnused: contracts not reachable from the declared roots
//   - BuildLevels: dependency-first levels (Kahn) for eager construction
//
// The Engine runs a callback per contract level by level, with the members
// of a level executed concurrently.
package dag
