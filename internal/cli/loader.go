package cli

import (
	"path/filepath"

	"github.com/kbukum/scopekit/manifest"
)

// Error codes reported by commands.
const (
	CodeInvalidFlag      = "INVALID_FLAG"
	CodeLoadFailed       = "LOAD_FAILED"
	CodeValidationFailed = "VALIDATION_FAILED"
)

// loadManifest reads the manifest at path and flattens its includes. Includes
// are searched next to the manifest first, then in includeDirs.
func loadManifest(path string, includeDirs []string) (*manifest.Manifest, error) {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, err
	}
	dirs := append([]string{filepath.Dir(path)}, includeDirs...)
	return manifest.Flatten(m, manifest.NewFileLoader(dirs...))
}
