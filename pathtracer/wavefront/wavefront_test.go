package wavefront

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/pathtracer/backend"
	_ "github.com/wavecore/pathtracer/backend/software"
	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer/rng"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"
	"github.com/wavecore/pathtracer/tlas"
)

func quadScene(t *testing.T) (SceneParams, InstanceMaterialIndex) {
	t.Helper()
	n := mgl32.Vec3{0, 1, 0}
	tri := raytrace.Triangle{
		P0: mgl32.Vec3{-5, 0, -5},
		P1: mgl32.Vec3{5, 0, -5},
		P2: mgl32.Vec3{5, 0, 5},
		N0: n, N1: n, N2: n,
	}
	blas, err := bvh.Build([]raytrace.Triangle{tri}, []uint32{0}, bvh.DefaultBuildOptions())
	require.NoError(t, err)

	inst := tlas.NewInstance(mgl32.Ident4(), blas)
	built, err := tlas.Build([]tlas.Instance{inst})
	require.NoError(t, err)

	tracer, err := backend.New("software", built)
	require.NoError(t, err)

	scene := SceneParams{
		Tracer:      tracer,
		Materials:   []material.Material{material.MakeDiffuse("white", [3]float32{1, 1, 1})},
		Environment: texture.NewConstantEnvironment(mgl32.Vec3{1, 1, 1}),
	}
	materialIndex := func(hit raytrace.Hit) uint32 { return 0 }
	return scene, materialIndex
}

func testCam() camera.Camera {
	return camera.New(mgl32.Vec3{0, 2, 4}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, 60)
}

func TestGenerate_ProducesOneStatePerPixelSample(t *testing.T) {
	settings := Settings{Width: 3, Height: 2, SamplesPerPixel: 2, MaxBounces: 4}
	queue := generate(SceneParams{}, testCam(), settings, rng.NewFrameKey(1, 0))
	assert.Len(t, queue, 3*2*2)
}

func TestExtend_WritesOneHitPerQueuedRay(t *testing.T) {
	scene, _ := quadScene(t)
	settings := Settings{Width: 2, Height: 2, SamplesPerPixel: 1, MaxBounces: 1, WorkerCount: 2}
	queue := generate(scene, testCam(), settings, rng.NewFrameKey(2, 0))

	hits, err := extend(context.Background(), scene, queue, settings.WorkerCount)
	require.NoError(t, err)
	assert.Len(t, hits, len(queue))
}

func TestShade_MissEmitsEnvironmentAndTerminates(t *testing.T) {
	scene, matIdx := quadScene(t)
	settings := Settings{MaxBounces: 4, RussianRouletteMinDepth: 3}

	queue := []rayState{{
		pixelIndex: 0, sampleIndex: 0,
		ray:        raytrace.NewRay(mgl32.Vec3{0, 100, 0}, mgl32.Vec3{0, 1, 0}),
		throughput: mgl32.Vec3{1, 1, 1},
		rnd:        rng.DeriveStream(rng.NewFrameKey(1, 0), "test"),
	}}
	hits := []raytrace.Hit{raytrace.MissHit()}

	next, contributions := shade(scene, matIdx, queue, hits, 0, settings, nil)
	assert.Empty(t, next)
	require.Len(t, contributions, 1)
	assert.Equal(t, scene.Environment.Sample(mgl32.Vec3{0, 1, 0}), contributions[0].Radiance)
}

func TestRun_ProducesExactlyOneContributionPerPixelSample(t *testing.T) {
	scene, matIdx := quadScene(t)
	settings := Settings{Width: 2, Height: 2, SamplesPerPixel: 2, MaxBounces: 3, RussianRouletteMinDepth: 3, WorkerCount: 2}

	contributions, err := Run(context.Background(), scene, matIdx, testCam(), settings, rng.NewFrameKey(5, 0))
	require.NoError(t, err)
	assert.Len(t, contributions, settings.Width*settings.Height*settings.SamplesPerPixel)
}

func TestRun_IsDeterministicGivenSameFrameKey(t *testing.T) {
	scene, matIdx := quadScene(t)
	settings := Settings{Width: 2, Height: 2, SamplesPerPixel: 1, MaxBounces: 3, RussianRouletteMinDepth: 3, WorkerCount: 2}
	key := rng.NewFrameKey(11, 0)

	a, err := Run(context.Background(), scene, matIdx, testCam(), settings, key)
	require.NoError(t, err)
	b, err := Run(context.Background(), scene, matIdx, testCam(), settings, key)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
