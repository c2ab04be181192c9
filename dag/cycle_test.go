package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCycles_TwoNodeCycle(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "a", Lifetime: Singleton, Dependencies: []string{"b"}},
		{Key: "b", Lifetime: Transient, Dependencies: []string{"a"}},
	}, nil)

	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, cycles[0].Path)
	assert.True(t, cycles[0].Contains("a"))
	assert.True(t, cycles[0].Contains("b"))
	assert.Equal(t, "a -> b -> a", cycles[0].String())
}

func TestFindCycles_SelfLoop(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{{Key: "a", Dependencies: []string{"a"}}}, nil)

	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "a"}, cycles[0].Path)
}

func TestFindCycles_IndependentCycles(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "a", Dependencies: []string{"b"}},
		{Key: "b", Dependencies: []string{"a"}},
		{Key: "x", Dependencies: []string{"y"}},
		{Key: "y", Dependencies: []string{"z"}},
		{Key: "z", Dependencies: []string{"x"}},
		{Key: "leaf"},
	}, nil)

	cycles := FindCycles(g)
	require.Len(t, cycles, 2)
	assert.Equal(t, []string{"a", "b", "a"}, cycles[0].Path)
	assert.Equal(t, []string{"x", "y", "z", "x"}, cycles[1].Path)
}

func TestFindCycles_CycleBelowEntry(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "entry", Dependencies: []string{"a"}},
		{Key: "a", Dependencies: []string{"b"}},
		{Key: "b", Dependencies: []string{"a"}},
	}, nil)

	cycles := FindCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a", "b", "a"}, cycles[0].Path)
}

func TestFindCycles_DiamondIsAcyclic(t *testing.T) {
	t.Parallel()

	g := Build([]Spec{
		{Key: "top", Dependencies: []string{"left", "right"}},
		{Key: "left", Dependencies: []string{"bottom"}},
		{Key: "right", Dependencies: []string{"bottom"}},
		{Key: "bottom"},
	}, nil)

	assert.Empty(t, FindCycles(g))
}
