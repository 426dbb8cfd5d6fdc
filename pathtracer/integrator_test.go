package pathtracer

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"
	"github.com/wavecore/pathtracer/tlas"

	_ "github.com/wavecore/pathtracer/backend/software"
)

func buildQuadScene(t *testing.T, mat material.Material) SceneContext {
	t.Helper()
	n := mgl32.Vec3{0, 1, 0}
	tris := []raytrace.Triangle{
		{P0: mgl32.Vec3{-5, 0, -5}, P1: mgl32.Vec3{5, 0, -5}, P2: mgl32.Vec3{5, 0, 5}, N0: n, N1: n, N2: n},
		{P0: mgl32.Vec3{-5, 0, -5}, P1: mgl32.Vec3{5, 0, 5}, P2: mgl32.Vec3{-5, 0, 5}, N0: n, N1: n, N2: n},
	}
	// Two triangles rather than one so the BVH has a genuine interior node
	// to traverse, needed by TestMegakernelRender_ViewModeAccelerationStructureDepthIsPositive.
	blas, err := bvh.Build(tris, []uint32{0, 0}, bvh.BuildOptions{IntervalCount: 8, SubdivideToSinglePrim: true})
	require.NoError(t, err)

	inst := tlas.NewInstance(mgl32.Ident4(), blas)
	built, err := tlas.Build([]tlas.Instance{inst})
	require.NoError(t, err)

	tracer, err := backend.New("software", built)
	require.NoError(t, err)

	return SceneContext{
		Tracer:      tracer,
		Scene:       built,
		Materials:   []material.Material{mat},
		Environment: texture.NewConstantEnvironment(mgl32.Vec3{1, 1, 1}),
	}
}

func TestTraceSample_MissReturnsEnvironmentRadiance(t *testing.T) {
	scene := buildQuadScene(t, material.MakeDiffuse("floor", [3]float32{1, 1, 1}))
	settings := DefaultRenderSettings()
	ray := raytrace.NewRay(mgl32.Vec3{0, 100, 0}, mgl32.Vec3{0, 1, 0})

	radiance := TraceSample(scene, ray, rand.New(rand.NewSource(1)), settings)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, radiance)
}

func TestTraceSample_EmissiveHitReturnsEmittedRadianceOnly(t *testing.T) {
	scene := buildQuadScene(t, material.MakeEmissive("light", [3]float32{0, 0, 0}, [3]float32{3, 2, 1}))
	settings := DefaultRenderSettings()
	ray := raytrace.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0})

	radiance := TraceSample(scene, ray, rand.New(rand.NewSource(2)), settings)
	assert.Equal(t, mgl32.Vec3{3, 2, 1}, radiance)
}

func TestTraceSample_SelfShadowPlaneUnderNoSkyIsDark(t *testing.T) {
	scene := buildQuadScene(t, material.MakeDiffuse("floor", [3]float32{0.8, 0.8, 0.8}))
	scene.Environment = texture.NewConstantEnvironment(mgl32.Vec3{0, 0, 0})
	settings := DefaultRenderSettings()
	settings.MaxBounces = 2
	ray := raytrace.NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0})

	radiance := TraceSample(scene, ray, rand.New(rand.NewSource(3)), settings)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, radiance, "a diffuse hit under a black sky with no light source emits nothing")
}

func TestSceneContext_MaterialForHitIndexesByTriangle(t *testing.T) {
	mat := material.MakeDiffuse("red", [3]float32{1, 0, 0})
	scene := buildQuadScene(t, mat)

	hit := raytrace.Hit{InstanceIdx: 0, PrimIdx: 0}
	assert.Equal(t, mat, scene.MaterialForHit(hit))
}
