// Package software registers the CPU TLAS-traversal backend: the default,
// always-available Tracer implementation used by both the megakernel and
// wavefront integrators.
package software

import (
	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/tlas"
)

func init() {
	backend.Register("software", func(scene *tlas.TLAS) backend.Tracer {
		return &Tracer{scene: scene}
	})
}

// Tracer wraps a built TLAS and answers queries via tlas.TLAS.TraceRay.
type Tracer struct {
	scene *tlas.TLAS
}

// Name implements backend.Tracer.
func (t *Tracer) Name() string { return "software" }

// TraceRay implements backend.Tracer.
func (t *Tracer) TraceRay(ray raytrace.Ray) raytrace.Hit {
	hit := raytrace.MissHit()
	t.scene.TraceRay(&ray, &hit)
	return hit
}
