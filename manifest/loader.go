package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader loads manifests by name.
type Loader interface {
	Load(name string) (*Manifest, error)
}

// FileLoader loads manifests from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches dirs for {name}.yaml and
// {name}.yml, directly and one directory down.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load finds and parses the manifest called name.
func (l *FileLoader) Load(name string) (*Manifest, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadFile(path)
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			if len(matches) > 0 {
				return LoadFile(matches[0])
			}
		}
	}
	return nil, fmt.Errorf("manifest: %q not found in %v", name, l.dirs)
}

// LoadFile reads and parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}

// Flatten resolves includes recursively and returns one manifest holding
// every service, included services first. A manifest included along two
// paths contributes its services once.
func Flatten(m *Manifest, loader Loader) (*Manifest, error) {
	out := &Manifest{Name: m.Name}
	stack := make(map[string]bool)
	done := make(map[string]bool)
	if err := flatten(m, loader, out, stack, done); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(m *Manifest, loader Loader, out *Manifest, stack, done map[string]bool) error {
	if stack[m.Name] {
		return fmt.Errorf("manifest: circular include of %q", m.Name)
	}
	stack[m.Name] = true
	defer delete(stack, m.Name)

	for _, name := range m.Includes {
		if done[name] {
			continue
		}
		if stack[name] {
			return fmt.Errorf("manifest: circular include of %q", name)
		}
		if loader == nil {
			return fmt.Errorf("manifest: %q includes %q but no loader is configured", m.Name, name)
		}
		sub, err := loader.Load(name)
		if err != nil {
			return fmt.Errorf("manifest: loading include %q: %w", name, err)
		}
		if err := flatten(sub, loader, out, stack, done); err != nil {
			return err
		}
	}

	out.Roots = append(out.Roots, m.Roots...)
	out.Services = append(out.Services, m.Services...)
	done[m.Name] = true
	return nil
}
