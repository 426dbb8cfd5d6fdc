// Package backend defines the Tracer abstraction a scene is traced
// through, and a name-keyed factory registry that concrete
// implementations (backend/software, backend/hardware) populate via
// init(), mirroring the teacher's kv-store/latency-model registration
// pattern: this package never imports its implementations, so there is
// no import cycle back from pathtracer, which imports only this package;
// the binary's cmd package imports backend/software and backend/hardware
// for their registration side effects.
package backend

import (
	"fmt"
	"sort"

	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/tlas"
)

// Tracer answers nearest-hit queries against a built scene.
type Tracer interface {
	// TraceRay returns the nearest hit along ray, or a miss hit if none.
	TraceRay(ray raytrace.Ray) raytrace.Hit
	// Name identifies the backend for logging/metrics.
	Name() string
}

// Factory constructs a Tracer bound to scene.
type Factory func(scene *tlas.TLAS) Tracer

var registry = map[string]Factory{}

// Register adds a named backend factory. Called from each backend
// implementation's init(); panics on a duplicate name since that can only
// happen from a programming error (two packages claiming the same name),
// never from user input.
func Register(name string, factory Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("backend: duplicate registration for %q", name))
	}
	registry[name] = factory
}

// New builds the named backend's Tracer over scene.
func New(name string, scene *tlas.TLAS) (Tracer, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("backend: unknown tracer backend %q", name)
	}
	return factory(scene), nil
}

// Names lists every registered backend, sorted for stable CLI help text.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
