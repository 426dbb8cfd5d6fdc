// Package hardware registers the "hardware" backend name so CLI/config
// validation can accept it, while reporting that no hardware ray-tracing
// capability is actually wired up in this build — matching spec.md's
// Non-goals, which name GPU/hardware ray tracing out of scope but still
// expect the backend name to resolve rather than fail CLI parsing.
package hardware

import (
	"errors"

	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/tlas"
)

// ErrHardwareUnavailable is the value Tracer.TraceRay panics with; this
// build carries no hardware ray-tracing path.
var ErrHardwareUnavailable = errors.New("backend/hardware: no hardware ray-tracing backend compiled into this build")

func init() {
	backend.Register("hardware", func(scene *tlas.TLAS) backend.Tracer {
		return &Tracer{}
	})
}

// Tracer is a stub: every query panics with ErrHardwareUnavailable rather
// than silently returning a miss, so a caller who selects "hardware"
// cannot mistake unavailability for empty geometry.
type Tracer struct{}

// Name implements backend.Tracer.
func (t *Tracer) Name() string { return "hardware" }

// TraceRay implements backend.Tracer. It panics: there is no safe
// zero-value Hit to return for "this backend cannot run at all", and the
// factory-based backend.Tracer interface has no error return to surface
// ErrHardwareUnavailable through instead.
func (t *Tracer) TraceRay(ray raytrace.Ray) raytrace.Hit {
	panic(ErrHardwareUnavailable)
}
