package reactive

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ComputesLazily(t *testing.T) {
	g := New()
	g.Set("x", 2)

	calls := 0
	g.Define("double", []string{"x"}, func(p map[string]any) (any, error) {
		calls++
		return p["x"].(int) * 2, nil
	})

	assert.Equal(t, 0, calls)
	v, err := g.Get("double")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, calls)
}

func TestGet_MemoizesUntilDependencyChanges(t *testing.T) {
	g := New()
	g.Set("x", 2)

	calls := 0
	g.Define("double", []string{"x"}, func(p map[string]any) (any, error) {
		calls++
		return p["x"].(int) * 2, nil
	})

	_, _ = g.Get("double")
	_, _ = g.Get("double")
	_, _ = g.Get("double")
	assert.Equal(t, 1, calls)

	g.Set("x", 5)
	v, err := g.Get("double")
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, calls)
}

func TestSet_DisjointParameterLeavesOutputCached(t *testing.T) {
	g := New()
	g.Set("x", 1)
	g.Set("y", 1)

	xCalls, yCalls := 0, 0
	g.Define("fx", []string{"x"}, func(p map[string]any) (any, error) {
		xCalls++
		return p["x"], nil
	})
	g.Define("fy", []string{"y"}, func(p map[string]any) (any, error) {
		yCalls++
		return p["y"], nil
	})

	_, _ = g.Get("fx")
	_, _ = g.Get("fy")

	g.Set("y", 9)
	_, _ = g.Get("fx")
	_, _ = g.Get("fy")

	assert.Equal(t, 1, xCalls)
	assert.Equal(t, 2, yCalls)
}

func TestGet_TwoLevelToggleDependency(t *testing.T) {
	g := New()
	g.Set("toggle", false)
	g.Set("min", 1.0)
	g.Set("max", 2.0)

	visibilityCalls, filterCalls := 0, 0
	g.Define("controls_visible", []string{"toggle"}, func(p map[string]any) (any, error) {
		visibilityCalls++
		return p["toggle"].(bool), nil
	})
	g.Define("range", []string{"toggle", "min", "max"}, func(p map[string]any) (any, error) {
		filterCalls++
		if !p["toggle"].(bool) {
			return nil, nil
		}
		return [2]float64{p["min"].(float64), p["max"].(float64)}, nil
	})

	_, _ = g.Get("controls_visible")
	_, _ = g.Get("range")

	// A bounds write invalidates the filter but not the visibility.
	g.Set("max", 3.0)
	_, _ = g.Get("controls_visible")
	_, _ = g.Get("range")
	assert.Equal(t, 1, visibilityCalls)
	assert.Equal(t, 2, filterCalls)

	// A toggle write invalidates both.
	g.Set("toggle", true)
	_, _ = g.Get("controls_visible")
	_, _ = g.Get("range")
	assert.Equal(t, 2, visibilityCalls)
	assert.Equal(t, 3, filterCalls)
}

func TestGet_UnknownOutput(t *testing.T) {
	g := New()
	_, err := g.Get("missing")
	assert.Error(t, err)
}

func TestGet_ComputeErrorIsNotCached(t *testing.T) {
	g := New()
	g.Set("x", 1)

	fail := true
	g.Define("flaky", []string{"x"}, func(p map[string]any) (any, error) {
		if fail {
			return nil, eris.New("boom")
		}
		return p["x"], nil
	})

	_, err := g.Get("flaky")
	require.Error(t, err)

	fail = false
	v, err := g.Get("flaky")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestParam(t *testing.T) {
	g := New()
	assert.Nil(t, g.Param("x"))
	g.Set("x", "v")
	assert.Equal(t, "v", g.Param("x"))
}
