package pathtracer

import (
	"context"

	"github.com/wavecore/pathtracer/pathtracer/wavefront"
	"github.com/wavecore/pathtracer/raytrace"
)

// wavefrontIntegrator adapts the wavefront package's staged pipeline to
// the Integrator interface. It lives in package pathtracer (rather than
// package wavefront) because it needs FrameContext/SceneContext/
// Accumulator, and wavefront deliberately does not import pathtracer (see
// pathtracer/wavefront/wavefront.go's package doc).
type wavefrontIntegrator struct{}

func newWavefrontIntegrator() Integrator {
	return wavefrontIntegrator{}
}

// Render implements Integrator. Debug render-view modes (everything but
// ViewModeNone) delegate to the megakernel form: they are diagnostic
// single-path replays over the same scene/material contract, not part of
// the staged energy pipeline the wavefront form exists to demonstrate, so
// duplicating traceDebugView's per-mode switch here would only be
// decoration, not a behavior difference (the megakernel merges debug values
// into the accumulator and resolves them the same way as radiance).
func (wavefrontIntegrator) Render(ctx context.Context, frameCtx FrameContext) error {
	if !frameCtx.ViewMode.IsFullIntegration() {
		return Megakernel{}.Render(ctx, frameCtx)
	}

	scene := frameCtx.Scene
	params := wavefront.SceneParams{
		Tracer:      scene.Tracer,
		Materials:   scene.Materials,
		Environment: scene.Environment,
	}

	materialIndex := func(hit raytrace.Hit) uint32 {
		inst := scene.Scene.Instances[hit.InstanceIdx]
		return inst.BLAS.MaterialIdx[hit.PrimIdx]
	}

	settings := wavefront.Settings{
		Width:                   frameCtx.Settings.Width,
		Height:                  frameCtx.Settings.Height,
		SamplesPerPixel:         frameCtx.Settings.SamplesPerPixel,
		MaxBounces:              frameCtx.Settings.MaxBounces,
		RussianRouletteMinDepth: frameCtx.Settings.RussianRouletteMinDepth,
		DiffuseSampling:         frameCtx.Settings.DiffuseSamplingMode(),
		WorkerCount:             frameCtx.Pool.WorkerCount(),
	}

	contributions, err := wavefront.Run(ctx, params, materialIndex, frameCtx.Camera, settings, frameCtx.FrameKey)
	if err != nil {
		return err
	}

	converted := make([]sampleContribution, len(contributions))
	for i, c := range contributions {
		converted[i] = sampleContribution{pixelIndex: c.PixelIndex, sampleIndex: c.SampleIndex, radiance: c.Radiance}
	}
	frameCtx.Accumulator.MergeOrdered(converted)
	return nil
}
