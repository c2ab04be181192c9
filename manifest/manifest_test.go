package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/scopekit/dag"
	"github.com/kbukum/scopekit/di"
	apperrors "github.com/kbukum/scopekit/errors"
	"github.com/kbukum/scopekit/logger"
)

const shopYAML = `
name: shop
includes: [storage]
services:
  - key: orders
    lifetime: scoped
    depends_on: [db]
    root: true
  - key: audit
    lifetime: singleton
    factory: audit-log
`

const storageYAML = `
name: storage
services:
  - key: db
    lifetime: singleton
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(shopYAML))
	require.NoError(t, err)

	assert.Equal(t, "shop", m.Name)
	assert.Equal(t, []string{"storage"}, m.Includes)
	require.Len(t, m.Services, 2)
	assert.Equal(t, "orders", m.Services[0].FactoryName())
	assert.Equal(t, "audit-log", m.Services[1].FactoryName())
	assert.Equal(t, []string{"orders"}, m.RootKeys())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"missing name", "services: []", "name"},
		{"missing key", "name: x\nservices:\n  - lifetime: singleton", "services[0].key"},
		{"bad lifetime", "name: x\nservices:\n  - key: a\n    lifetime: forever", "services[0].lifetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	_, err := Parse([]byte("name: [unterminated"))
	assert.ErrorContains(t, err, "manifest: parsing")
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "storage.yaml", storageYAML)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "shop.yml", shopYAML)

	loader := NewFileLoader(dir)
	m, err := loader.Load("storage")
	require.NoError(t, err)
	assert.Equal(t, "storage", m.Name)

	m, err = loader.Load("shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", m.Name)

	_, err = loader.Load("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestFlatten(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "storage.yaml", storageYAML)
	writeFile(t, dir, "cache.yaml", "name: cache\nincludes: [storage]\nservices:\n  - key: redis\n    lifetime: singleton\n    depends_on: [db]\n")

	root, err := Parse([]byte("name: app\nincludes: [storage, cache]\nroots: [redis]\nservices:\n  - key: api\n    lifetime: transient\n"))
	require.NoError(t, err)

	flat, err := Flatten(root, NewFileLoader(dir))
	require.NoError(t, err)

	var keys []string
	for _, s := range flat.Services {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"db", "redis", "api"}, keys, "storage is included once")
	assert.Equal(t, []string{"redis"}, flat.RootKeys())
}

func TestFlatten_CircularInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\nincludes: [b]\nservices: []\n")
	writeFile(t, dir, "b.yaml", "name: b\nincludes: [a]\nservices: []\n")

	loader := NewFileLoader(dir)
	a, err := loader.Load("a")
	require.NoError(t, err)

	_, err = Flatten(a, loader)
	assert.ErrorContains(t, err, "circular include")
}

func TestGraph(t *testing.T) {
	m, err := Parse([]byte(`
name: g
services:
  - key: cache
    lifetime: singleton
    depends_on: [session]
  - key: session
    lifetime: scoped
`))
	require.NoError(t, err)

	g, err := m.Graph()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Len(t, dag.FindCaptiveDependencies(g, dag.PolicyStrict), 1)
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "storage.yaml", storageYAML)
	m, err := Parse([]byte(shopYAML))
	require.NoError(t, err)
	flat, err := Flatten(m, NewFileLoader(dir))
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Register("db", func(di.Resolver) (any, error) { return "db-conn", nil })
	reg.Register("audit-log", func(di.Resolver) (any, error) { return "audit", nil })
	reg.Register("orders", func(r di.Resolver) (any, error) {
		db, err := di.Resolve[string](r.Context(), r, "db")
		if err != nil {
			return nil, err
		}
		return "orders@" + db, nil
	})
	assert.Equal(t, []string{"audit-log", "db", "orders"}, reg.List())

	b := di.NewBuilder(di.WithLogger(logger.Nop()))
	require.NoError(t, Apply(b, flat, reg))
	c, err := b.Build()
	require.NoError(t, err)
	defer c.Dispose(context.Background())

	scope, err := c.CreateScope(nil)
	require.NoError(t, err)
	orders, err := di.Resolve[string](context.Background(), scope, "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders@db-conn", orders)

	report := c.Validate()
	assert.True(t, report.OK())
	assert.Equal(t, []string{"audit"}, report.UnusedServices)
}

func TestApply_MissingFactories(t *testing.T) {
	m, err := Parse([]byte(shopYAML))
	require.NoError(t, err)

	b := di.NewBuilder(di.WithLogger(logger.Nop()))
	err = Apply(b, m, NewRegistry())
	require.ErrorIs(t, err, apperrors.ErrMissingFactory)
	assert.ErrorContains(t, err, "orders")
	assert.ErrorContains(t, err, "audit")
	assert.Zero(t, b.Len())
}

func TestCheck(t *testing.T) {
	m, err := Parse([]byte(shopYAML))
	require.NoError(t, err)
	assert.Empty(t, Check(m))

	m, err = Parse([]byte(`
name: dup
services:
  - key: db
    lifetime: singleton
  - key: db
    lifetime: scoped
  - key: handler
    lifetime: transient
    multi: true
  - key: handler
    lifetime: transient
    multi: true
`))
	require.NoError(t, err)
	errs := Check(m)
	require.Len(t, errs, 1)
	assert.Equal(t, apperrors.ErrCodeDuplicateRegistration, errs[0].Code)
	assert.Equal(t, "db", errs[0].Key)
	assert.Equal(t, 2, errs[0].Details["count"])
}
