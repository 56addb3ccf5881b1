// Package reactive maps a mutable parameter set to lazily recomputed,
// memoized derived outputs. The dependency graph is explicit: each output
// declares the parameters it reads, and a write invalidates exactly the
// outputs whose declared set contains the written parameter.
//
// The graph follows the application's single-threaded, event-driven model:
// each parameter write is handled to completion before the next, so no
// locking is needed.
package reactive

import "github.com/rotisserie/eris"

// ComputeFunc produces an output value from the current parameter values.
type ComputeFunc func(params map[string]any) (any, error)

type output struct {
	deps    []string
	compute ComputeFunc

	cached      any
	computedRev uint64
	valid       bool
}

// Graph holds parameters and their derived outputs.
type Graph struct {
	rev      uint64
	paramRev map[string]uint64
	params   map[string]any
	outputs  map[string]*output
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		paramRev: make(map[string]uint64),
		params:   make(map[string]any),
		outputs:  make(map[string]*output),
	}
}

// Set writes a parameter and stamps it with the next revision. Outputs are
// not recomputed here; they go stale and recompute on the next Get.
func (g *Graph) Set(name string, value any) {
	g.rev++
	g.params[name] = value
	g.paramRev[name] = g.rev
}

// Param returns the current value of a parameter, or nil when unset.
func (g *Graph) Param(name string) any {
	return g.params[name]
}

// Define registers a derived output as a pure function of the named
// parameters. Defining a name twice replaces the previous output and drops
// its cache.
func (g *Graph) Define(name string, deps []string, compute ComputeFunc) {
	g.outputs[name] = &output{deps: deps, compute: compute}
}

// Get returns the output's value, recomputing it only when a declared
// dependency changed since the cached computation. Outputs whose
// dependency sets are disjoint from recent writes stay cached.
func (g *Graph) Get(name string) (any, error) {
	out, ok := g.outputs[name]
	if !ok {
		return nil, eris.Errorf("reactive: unknown output %q", name)
	}

	var latest uint64
	for _, dep := range out.deps {
		if r := g.paramRev[dep]; r > latest {
			latest = r
		}
	}

	if out.valid && latest <= out.computedRev {
		return out.cached, nil
	}

	v, err := out.compute(g.params)
	if err != nil {
		return nil, eris.Wrapf(err, "reactive: compute %s", name)
	}
	out.cached = v
	out.computedRev = latest
	out.valid = true
	return v, nil
}
