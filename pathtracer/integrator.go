package pathtracer

import (
	"context"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer/rng"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"
	"github.com/wavecore/pathtracer/tlas"
)

// SceneContext bundles everything an integrator needs to shade a ray: the
// acceleration structure (via the selected Tracer, plus the raw TLAS for
// material lookups a Tracer interface alone can't expose), the scene's
// material table, and the miss-ray environment.
type SceneContext struct {
	Tracer      backend.Tracer
	Scene       *tlas.TLAS
	Materials   []material.Material
	Environment *texture.Environment
}

// MaterialForHit resolves the material a hit's triangle shades with. The
// BLAS stores one material index per triangle (assigned when the mesh was
// created), indexing into this scene's flat Materials table.
func (s SceneContext) MaterialForHit(hit raytrace.Hit) material.Material {
	inst := s.Scene.Instances[hit.InstanceIdx]
	matIdx := inst.BLAS.MaterialIdx[hit.PrimIdx]
	return s.Materials[matIdx]
}

// FrameContext is everything Renderer.Render assembles once per frame and
// hands to whichever Integrator is selected; both the megakernel and the
// wavefront pipeline read the same fields.
type FrameContext struct {
	Scene    SceneContext
	Camera   camera.Camera
	Settings RenderSettings
	ViewMode RenderViewMode
	FrameKey rng.FrameKey

	Accumulator *Accumulator
	Pool        *ThreadPool
}

// Integrator drives one frame's worth of per-pixel radiance estimation,
// merging its contributions into ctx.Accumulator. The megakernel and
// wavefront integrators both implement this by calling into the same
// material.Shade helper so their outputs agree bounce-for-bounce, the
// parity property spec §8 calls for.
type Integrator interface {
	Render(ctx context.Context, frameCtx FrameContext) error
}

// TraceSample runs one full camera sample (primary ray generation through
// however many bounces the path takes) to completion and returns its
// radiance estimate. This is the per-sample unit of work both the
// megakernel's pixel loop and the wavefront's per-bounce queues reduce to;
// it is exported so tests can exercise it directly. The wavefront package
// does not call it; it runs the same steps through material.Shade.
func TraceSample(scene SceneContext, primaryRay raytrace.Ray, rnd *rand.Rand, settings RenderSettings) mgl32.Vec3 {
	ray := primaryRay
	throughput := mgl32.Vec3{1, 1, 1}
	radiance := mgl32.Vec3{}

	for depth := 0; depth <= settings.MaxBounces; depth++ {
		hit := scene.Tracer.TraceRay(ray)

		if !hit.HasHit() {
			if scene.Environment != nil {
				radiance = radiance.Add(raytrace.ElemMul(throughput, scene.Environment.Sample(ray.Dir.Normalize())))
			}
			break
		}

		mat := scene.MaterialForHit(hit)
		result := material.Shade(hit, mat, ray.Dir.Normalize(), rnd, settings.DiffuseSamplingMode())
		radiance = radiance.Add(raytrace.ElemMul(throughput, result.Emitted))
		if result.Terminated {
			break
		}

		throughput = raytrace.ElemMul(throughput, result.Throughput)

		survive, scale := raytrace.RussianRouletteSurvive(throughput, depth, settings.RussianRouletteMinDepth, rnd.Float32())
		if !survive {
			break
		}
		throughput = throughput.Mul(scale)

		ray = result.NextRay
	}

	return radiance
}
