package pathtracer

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer/rng"
	"github.com/wavecore/pathtracer/raytrace"
)

// Megakernel is the single-goroutine-per-sample integrator: one call to
// TraceSample runs every bounce of one camera sample to completion,
// matching the original renderer's CPUPathtracer.cpp megakernel shape (as
// opposed to the staged, queue-compacted wavefront form in
// pathtracer/wavefront). Render dispatches one job per (pixel, sample)
// pair across the frame's ThreadPool.
type Megakernel struct{}

// Render implements Integrator. Every (pixel, sample) pair is an
// independent job writing into its own preallocated slot of the
// contributions slice, so no synchronization is needed between jobs; the
// accumulator merge happens once, after ThreadPool.Dispatch returns, in
// deterministic fingerprint order regardless of which job finished first.
func (Megakernel) Render(ctx context.Context, frameCtx FrameContext) error {
	settings := frameCtx.Settings
	spp := settings.SamplesPerPixel
	jobCount := settings.Width * settings.Height * spp

	contributions := make([]sampleContribution, jobCount)

	err := frameCtx.Pool.Dispatch(ctx, jobCount, settings.Width, func(_ context.Context, start, end int) error {
		for i := start; i < end; i++ {
			pixelIndex := i / spp
			sampleIndex := i % spp
			x := pixelIndex % settings.Width
			y := pixelIndex / settings.Width

			primaryRay := frameCtx.Camera.PrimaryRay(x, y, settings.Width, settings.Height)
			streamName := fmt.Sprintf("px_%d_%d_s_%d", x, y, sampleIndex)
			rnd := rng.DeriveStream(frameCtx.FrameKey, streamName)

			var radiance mgl32.Vec3
			if frameCtx.ViewMode.IsFullIntegration() {
				radiance = TraceSample(frameCtx.Scene, primaryRay, rnd, settings)
			} else {
				radiance = traceDebugView(frameCtx.Scene, primaryRay, rnd, settings, frameCtx.ViewMode)
			}

			contributions[i] = sampleContribution{pixelIndex: pixelIndex, sampleIndex: sampleIndex, radiance: radiance}
		}
		return nil
	})
	if err != nil {
		return err
	}

	frameCtx.Accumulator.MergeOrdered(contributions)
	return nil
}

// traceDebugView implements every RenderViewMode other than ViewModeNone.
// Modes that only describe the primary hit short-circuit after one
// TraceRay call; RayRecursionDepth and RussianRouletteKillDepth need the
// full bounce loop to know how far the path actually got.
func traceDebugView(scene SceneContext, primaryRay raytrace.Ray, rnd *rand.Rand, settings RenderSettings, viewMode RenderViewMode) mgl32.Vec3 {
	switch viewMode {
	case ViewModeRayRecursionDepth, ViewModeRussianRouletteKillDepth:
		return traceDepthDebugView(scene, primaryRay, rnd, settings, viewMode)
	}

	ray := primaryRay
	hit := scene.Tracer.TraceRay(ray)

	switch viewMode {
	case ViewModeDepth:
		if !hit.HasHit() {
			return mgl32.Vec3{}
		}
		return mgl32.Vec3{hit.T, hit.T, hit.T}
	case ViewModeAccelerationStructureDepth:
		// backend.Tracer takes the ray by value, so the traversal depth is
		// read from a direct TLAS walk over a local copy of the ray.
		depthRay := primaryRay
		depthHit := raytrace.MissHit()
		scene.Scene.TraceRay(&depthRay, &depthHit)
		d := float32(depthRay.BVHDepth)
		return mgl32.Vec3{d, d, d}
	}

	if !hit.HasHit() {
		return mgl32.Vec3{}
	}

	switch viewMode {
	case ViewModeHitAlbedo:
		return scene.MaterialForHit(hit).AlbedoVec()
	case ViewModeHitNormal:
		return hit.Normal.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5)
	case ViewModeHitBarycentrics:
		return hit.Bary
	case ViewModeHitSpecRefract:
		mat := scene.MaterialForHit(hit)
		return mgl32.Vec3{mat.Specular, mat.Refractivity, 0}
	case ViewModeHitAbsorption:
		return scene.MaterialForHit(hit).AbsorptionVec()
	case ViewModeHitEmissive:
		return scene.MaterialForHit(hit).EmissiveVec()
	default:
		return mgl32.Vec3{}
	}
}

// traceDepthDebugView replays the full bounce loop, returning the depth at
// which the path stopped (as a flat gray value) rather than its radiance:
// RayRecursionDepth counts every bounce taken regardless of why it
// stopped; RussianRouletteKillDepth reports the depth only when Russian
// roulette specifically was the cause, and 0 otherwise (ran to MaxBounces,
// missed, or hit an emissive surface first).
func traceDepthDebugView(scene SceneContext, primaryRay raytrace.Ray, rnd *rand.Rand, settings RenderSettings, viewMode RenderViewMode) mgl32.Vec3 {
	ray := primaryRay
	throughput := mgl32.Vec3{1, 1, 1}
	killedByRR := false
	depth := 0

	for ; depth <= settings.MaxBounces; depth++ {
		hit := scene.Tracer.TraceRay(ray)
		if !hit.HasHit() {
			break
		}

		mat := scene.MaterialForHit(hit)
		result := material.Shade(hit, mat, ray.Dir.Normalize(), rnd, settings.DiffuseSamplingMode())
		if result.Terminated {
			break
		}

		throughput = raytrace.ElemMul(throughput, result.Throughput)
		survive, scale := raytrace.RussianRouletteSurvive(throughput, depth, settings.RussianRouletteMinDepth, rnd.Float32())
		if !survive {
			killedByRR = true
			break
		}
		throughput = throughput.Mul(scale)
		ray = result.NextRay
	}

	if viewMode == ViewModeRussianRouletteKillDepth {
		if !killedByRR {
			return mgl32.Vec3{}
		}
	}

	d := float32(depth)
	return mgl32.Vec3{d, d, d}
}
