// Package wavefront implements the staged, per-bounce form of the path
// integrator (spec §4.5.2): rays live in a queue that is regenerated each
// bounce rather than recursing in a single function call, so the set of
// in-flight rays compacts naturally as paths terminate. It shares
// material.Shade with the megakernel (package pathtracer) so the two
// integrator forms can only diverge in scheduling, never in physics — the
// parity testable property spec §8 requires. This package deliberately
// does not import package pathtracer (it would cycle back through
// pathtracer's own use of this package), so it re-implements the bounded
// worker-pool dispatch pattern pathtracer.ThreadPool uses rather than
// sharing that type; see DESIGN.md.
package wavefront

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer/rng"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"
)

// SceneParams is the subset of pathtracer.SceneContext this package needs;
// kept as its own type (rather than importing pathtracer.SceneContext) to
// avoid the import cycle noted above.
type SceneParams struct {
	Tracer      backend.Tracer
	Materials   []material.Material
	Environment *texture.Environment
}

// Settings is the subset of pathtracer.RenderSettings the wavefront
// pipeline reads.
type Settings struct {
	Width, Height           int
	SamplesPerPixel         int
	MaxBounces              int
	RussianRouletteMinDepth int
	DiffuseSampling         material.DiffuseSamplingMode
	WorkerCount             int
}

// Contribution is one (pixel, sample) path's final radiance, emitted once
// a ray state terminates (miss, emissive hit, or Russian-roulette kill) or
// the bounce budget runs out.
type Contribution struct {
	PixelIndex  int
	SampleIndex int
	Radiance    mgl32.Vec3
}

// rayState is one in-flight path carried from bounce to bounce in the
// queue; Radiance accumulates emitted contributions as the path proceeds,
// so whichever stage terminates the path can emit the full accumulated
// value rather than threading it back through a separate structure.
type rayState struct {
	pixelIndex  int
	sampleIndex int
	ray         raytrace.Ray
	throughput  mgl32.Vec3
	radiance    mgl32.Vec3
	rnd         *rand.Rand
}

// InstanceMaterialIndex resolves a hit to a material table index; the
// caller supplies this (rather than this package reaching into tlas.TLAS
// directly) so SceneParams stays a flat value type.
type InstanceMaterialIndex func(hit raytrace.Hit) uint32

// Run executes the full staged pipeline for one frame: Generate produces
// the bounce-0 queue, then each bounce runs Extend (traverse) and Shade
// (material.Shade) over the current queue, feeding survivors into the
// next bounce's queue (the implicit compactor spec §4.5.2 describes: the
// queue only ever holds live rays, so each bounce's dispatch shrinks).
func Run(ctx context.Context, scene SceneParams, materialIndex InstanceMaterialIndex, cam camera.Camera, settings Settings, frameKey rng.FrameKey) ([]Contribution, error) {
	queue := generate(scene, cam, settings, frameKey)
	contributions := make([]Contribution, 0, settings.Width*settings.Height*settings.SamplesPerPixel)

	for bounce := 0; bounce <= settings.MaxBounces && len(queue) > 0; bounce++ {
		hits, err := extend(ctx, scene, queue, settings.WorkerCount)
		if err != nil {
			return nil, fmt.Errorf("wavefront: extend bounce %d: %w", bounce, err)
		}

		var next []rayState
		next, contributions = shade(scene, materialIndex, queue, hits, bounce, settings, contributions)
		queue = next
	}

	// Any paths still in flight when the bounce budget runs out emit the
	// radiance gathered so far, matching the megakernel's loop-exit behavior.
	for _, state := range queue {
		contributions = append(contributions, Contribution{PixelIndex: state.pixelIndex, SampleIndex: state.sampleIndex, Radiance: state.radiance})
	}
	return contributions, nil
}

// generate produces one primary-ray rayState per (pixel, sample) pair,
// the "Generate (bounce 0 only)" stage of spec §4.5.2.
func generate(scene SceneParams, cam camera.Camera, settings Settings, frameKey rng.FrameKey) []rayState {
	queue := make([]rayState, settings.Width*settings.Height*settings.SamplesPerPixel)
	idx := 0
	for y := 0; y < settings.Height; y++ {
		for x := 0; x < settings.Width; x++ {
			for s := 0; s < settings.SamplesPerPixel; s++ {
				streamName := fmt.Sprintf("px_%d_%d_s_%d", x, y, s)
				queue[idx] = rayState{
					pixelIndex:  y*settings.Width + x,
					sampleIndex: s,
					ray:         cam.PrimaryRay(x, y, settings.Width, settings.Height),
					throughput:  mgl32.Vec3{1, 1, 1},
					rnd:         rng.DeriveStream(frameKey, streamName),
				}
				idx++
			}
		}
	}
	return queue
}

// extend traverses every queued ray against the scene, the "Extend" stage;
// each job writes into its own disjoint slice index so no locking is
// needed between concurrent workers.
func extend(ctx context.Context, scene SceneParams, queue []rayState, workerCount int) ([]raytrace.Hit, error) {
	hits := make([]raytrace.Hit, len(queue))
	if workerCount <= 0 {
		workerCount = 1
	}

	const groupSize = 4096
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for start := 0; start < len(queue); start += groupSize {
		end := start + groupSize
		if end > len(queue) {
			end = len(queue)
		}
		start, end := start, end
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			for i := start; i < end; i++ {
				hits[i] = scene.Tracer.TraceRay(queue[i].ray)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}

// shade applies material.Shade to every intersection, the "Shade" stage:
// terminated paths (miss, emissive hit, or Russian-roulette kill) emit
// their accumulated radiance into contributions; surviving paths are
// appended to the next bounce's queue with updated throughput and ray.
func shade(scene SceneParams, materialIndex InstanceMaterialIndex, queue []rayState, hits []raytrace.Hit, depth int, settings Settings, contributions []Contribution) ([]rayState, []Contribution) {
	next := make([]rayState, 0, len(queue))

	for i, state := range queue {
		hit := hits[i]

		if !hit.HasHit() {
			if scene.Environment != nil {
				state.radiance = state.radiance.Add(raytrace.ElemMul(state.throughput, scene.Environment.Sample(state.ray.Dir.Normalize())))
			}
			contributions = append(contributions, Contribution{PixelIndex: state.pixelIndex, SampleIndex: state.sampleIndex, Radiance: state.radiance})
			continue
		}

		mat := scene.Materials[materialIndex(hit)]
		result := material.Shade(hit, mat, state.ray.Dir.Normalize(), state.rnd, settings.DiffuseSampling)
		state.radiance = state.radiance.Add(raytrace.ElemMul(state.throughput, result.Emitted))
		if result.Terminated {
			contributions = append(contributions, Contribution{PixelIndex: state.pixelIndex, SampleIndex: state.sampleIndex, Radiance: state.radiance})
			continue
		}

		state.throughput = raytrace.ElemMul(state.throughput, result.Throughput)
		survive, scale := raytrace.RussianRouletteSurvive(state.throughput, depth, settings.RussianRouletteMinDepth, state.rnd.Float32())
		if !survive {
			contributions = append(contributions, Contribution{PixelIndex: state.pixelIndex, SampleIndex: state.sampleIndex, Radiance: state.radiance})
			continue
		}
		state.throughput = state.throughput.Mul(scale)
		state.ray = result.NextRay
		next = append(next, state)
	}

	return next, contributions
}
