package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCaptiveDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		specs  []Spec
		policy Policy
		want   []Captive
	}{
		{
			name: "singleton to scoped",
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"t"}},
				{Key: "t", Lifetime: Scoped},
			},
			want: []Captive{{Root: "s", Consumer: "s", Dependency: "t", Path: []string{"s", "t"}}},
		},
		{
			name: "singleton through transient to scoped",
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"tr"}},
				{Key: "tr", Lifetime: Transient, Dependencies: []string{"sc"}},
				{Key: "sc", Lifetime: Scoped},
			},
			want: []Captive{{Root: "s", Consumer: "tr", Dependency: "sc", Path: []string{"s", "tr", "sc"}}},
		},
		{
			name:   "direct policy ignores transitive capture",
			policy: PolicyDirect,
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"tr"}},
				{Key: "tr", Lifetime: Transient, Dependencies: []string{"sc"}},
				{Key: "sc", Lifetime: Scoped},
			},
		},
		{
			name: "scoped consumers are always allowed",
			specs: []Spec{
				{Key: "sc", Lifetime: Scoped, Dependencies: []string{"tr", "single"}},
				{Key: "tr", Lifetime: Transient},
				{Key: "single", Lifetime: Singleton},
			},
		},
		{
			name: "singleton to transient is allowed",
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"tr"}},
				{Key: "tr", Lifetime: Transient},
			},
		},
		{
			name: "any scoped implementation of a multi binding is flagged",
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"plugin"}},
				{Key: "plugin", Lifetime: Transient},
				{Key: "plugin", Lifetime: Scoped},
			},
			want: []Captive{{Root: "s", Consumer: "s", Dependency: "plugin", Path: []string{"s", "plugin"}}},
		},
		{
			name: "walk stops at scoped and singleton nodes",
			specs: []Spec{
				{Key: "s1", Lifetime: Singleton, Dependencies: []string{"s2"}},
				{Key: "s2", Lifetime: Singleton, Dependencies: []string{"sc"}},
				{Key: "sc", Lifetime: Scoped, Dependencies: []string{"deep"}},
				{Key: "deep", Lifetime: Scoped},
			},
			want: []Captive{{Root: "s2", Consumer: "s2", Dependency: "sc", Path: []string{"s2", "sc"}}},
		},
		{
			name: "transient cycle terminates",
			specs: []Spec{
				{Key: "s", Lifetime: Singleton, Dependencies: []string{"t1"}},
				{Key: "t1", Lifetime: Transient, Dependencies: []string{"t2"}},
				{Key: "t2", Lifetime: Transient, Dependencies: []string{"t1"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := FindCaptiveDependencies(Build(tc.specs, nil), tc.policy)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	p, err = ParsePolicy("DIRECT")
	require.NoError(t, err)
	assert.Equal(t, PolicyDirect, p)
	assert.Equal(t, "direct", p.String())

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

func TestCaptive_String(t *testing.T) {
	t.Parallel()

	c := Captive{Root: "s", Consumer: "tr", Dependency: "sc", Path: []string{"s", "tr", "sc"}}
	assert.Equal(t, "s captures scoped sc via s -> tr -> sc", c.String())
}
