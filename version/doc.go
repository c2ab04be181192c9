// Package version reports build information for scopekit binaries.
//
// Version, Commit and BuildTime are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/scopekit/version.Version=1.2.0" ./cmd/scopekit
//
// Unset values fall back to the VCS stamp recorded by the Go toolchain.
package version
