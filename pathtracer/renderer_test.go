package pathtracer_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/geom"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"
	"github.com/wavecore/pathtracer/tlas"

	_ "github.com/wavecore/pathtracer/backend/software"
)

func testSettings() pathtracer.RenderSettings {
	s := pathtracer.DefaultRenderSettings()
	s.Width = 4
	s.Height = 4
	s.SamplesPerPixel = 2
	s.WorkerCount = 2
	return s
}

func TestInit_RejectsInvalidSettings(t *testing.T) {
	s := testSettings()
	s.Width = 0
	_, err := pathtracer.Init(pathtracer.Params{RenderSettings: s, PostFX: pathtracer.DefaultPostFXSettings()})
	assert.Error(t, err)
}

func TestInit_RejectsUnknownBackend(t *testing.T) {
	s := testSettings()
	s.Backend = "quantum"
	_, err := pathtracer.Init(pathtracer.Params{RenderSettings: s, PostFX: pathtracer.DefaultPostFXSettings()})
	assert.Error(t, err)
}

func TestSubmitInstance_CapacityExceeded(t *testing.T) {
	r, err := pathtracer.Init(pathtracer.Params{RenderSettings: testSettings(), PostFX: pathtracer.DefaultPostFXSettings()})
	require.NoError(t, err)

	r.BeginScene(camera.New(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 60))
	stale := geom.Handle{}
	for i := 0; i < tlas.MaxInstances; i++ {
		require.NoError(t, r.SubmitInstance(mgl32.Ident4(), stale, 0))
	}
	assert.ErrorIs(t, r.SubmitInstance(mgl32.Ident4(), stale, 0), pathtracer.ErrTooManyInstances)
}

func TestSetMaterials_RejectsInvalidMaterial(t *testing.T) {
	r, err := pathtracer.Init(pathtracer.Params{RenderSettings: testSettings(), PostFX: pathtracer.DefaultPostFXSettings()})
	require.NoError(t, err)

	bad := material.MakeSpecular("over-budget", [3]float32{1, 1, 1}, 0.9)
	bad.Refractivity = 0.5 // specular + refractivity > 1

	assert.ErrorIs(t, r.SetMaterials([]material.Material{bad}), pathtracer.ErrInvalidMaterial)
}

func TestRender_EmptySceneProducesSky(t *testing.T) {
	s := testSettings()
	r, err := pathtracer.Init(pathtracer.Params{RenderSettings: s, PostFX: pathtracer.DefaultPostFXSettings()})
	require.NoError(t, err)

	sky := mgl32.Vec3{0.25, 0.5, 0.75}
	r.SetEnvironment(texture.NewConstantEnvironment(sky))

	cam := camera.New(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, -1}, mgl32.Vec3{0, 1, 0}, 60)
	r.BeginScene(cam)
	frame, err := r.Render(context.Background())
	require.NoError(t, err)
	r.EndScene()

	first := frame[0]
	for _, px := range frame {
		assert.Equal(t, first, px, "every pixel should resolve to the same flat sky color")
	}
}

func TestRender_MegakernelWavefrontParity(t *testing.T) {
	buildAndRender := func(wavefront bool) []uint32 {
		s := testSettings()
		s.Wavefront = wavefront
		s.Seed = 99

		r, err := pathtracer.Init(pathtracer.Params{RenderSettings: s, PostFX: pathtracer.DefaultPostFXSettings()})
		require.NoError(t, err)

		handle, err := r.GeomRegistry().CreateMesh(
			[]raytrace.Vertex{
				{Position: mgl32.Vec3{-5, 0, -5}, Normal: mgl32.Vec3{0, 1, 0}},
				{Position: mgl32.Vec3{5, 0, -5}, Normal: mgl32.Vec3{0, 1, 0}},
				{Position: mgl32.Vec3{5, 0, 5}, Normal: mgl32.Vec3{0, 1, 0}},
				{Position: mgl32.Vec3{-5, 0, 5}, Normal: mgl32.Vec3{0, 1, 0}},
			},
			[]uint32{0, 1, 2, 0, 2, 3},
			[]uint32{0, 0},
			"parity_quad",
			bvh.DefaultBuildOptions(),
		)
		require.NoError(t, err)

		require.NoError(t, r.SetMaterials([]material.Material{material.MakeDiffuse("white", [3]float32{1, 1, 1})}))
		r.SetEnvironment(texture.NewConstantEnvironment(mgl32.Vec3{1, 1, 1}))

		cam := camera.New(mgl32.Vec3{0, 2, 4}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, 60)
		r.BeginScene(cam)
		require.NoError(t, r.SubmitInstance(mgl32.Ident4(), handle, 0))
		frame, err := r.Render(context.Background())
		require.NoError(t, err)
		r.EndScene()
		return frame
	}

	mega := buildAndRender(false)
	wave := buildAndRender(true)
	assert.Equal(t, mega, wave, "megakernel and wavefront must agree bit-for-bit given the same seed and scene")
}

func TestRenderer_ShouldCloseLifecycle(t *testing.T) {
	r, err := pathtracer.Init(pathtracer.Params{RenderSettings: testSettings(), PostFX: pathtracer.DefaultPostFXSettings()})
	require.NoError(t, err)

	assert.False(t, r.ShouldClose())
	r.RequestClose()
	assert.True(t, r.ShouldClose())
}

func TestSwitchBackend_UnknownNameErrors(t *testing.T) {
	r, err := pathtracer.Init(pathtracer.Params{RenderSettings: testSettings(), PostFX: pathtracer.DefaultPostFXSettings()})
	require.NoError(t, err)
	assert.Error(t, r.SwitchBackend("quantum"))
}
