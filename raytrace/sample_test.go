package raytrace

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrthonormalBasisIsOrthogonal(t *testing.T) {
	normals := []mgl32.Vec3{
		{0, 1, 0},
		{0, 0, 1},
		{0, -1, 0},
		{0.577, 0.577, 0.577},
	}
	for _, n := range normals {
		n = n.Normalize()
		tangent, bitangent := OrthonormalBasis(n)

		assert.InDelta(t, 0, tangent.Dot(n), 1e-4)
		assert.InDelta(t, 0, bitangent.Dot(n), 1e-4)
		assert.InDelta(t, 0, tangent.Dot(bitangent), 1e-4)
		assert.InDelta(t, 1, tangent.Len(), 1e-4)
		assert.InDelta(t, 1, bitangent.Len(), 1e-4)
	}
}

func TestCosineWeightedHemisphereStaysInHemisphere(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	for i := 0; i < 64; i++ {
		u1 := float32(i) / 64
		u2 := float32((i*37)%64) / 64
		d := CosineWeightedHemisphere(n, u1, u2)
		assert.GreaterOrEqual(t, d.Dot(n), float32(-1e-4))
		assert.InDelta(t, 1, d.Len(), 1e-4)
	}
}

func TestUniformHemisphereStaysInHemisphere(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	for i := 0; i < 64; i++ {
		u1 := float32(i) / 64
		u2 := float32((i*37)%64) / 64
		d := UniformHemisphere(n, u1, u2)
		assert.GreaterOrEqual(t, d.Dot(n), float32(-1e-4))
		assert.InDelta(t, 1, d.Len(), 1e-4)
	}
}

func TestReflectPreservesAngleToNormal(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	d := mgl32.Vec3{1, -1, 0}.Normalize()
	r := Reflect(d, n)

	assert.InDelta(t, d.Dot(n), -r.Dot(n), 1e-4)
}

func TestFresnelDielectricIsBoundedAndReachesOneAtGrazingAngle(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	eta := float32(1.0 / 1.5)
	for _, cosI := range []float32{0.05, 0.25, 0.5, 0.75, 1} {
		sinI := mgl32Sqrt(1 - cosI*cosI)
		d := mgl32.Vec3{sinI, -cosI, 0}
		_, cosT, ok := Refract(d, n, eta)
		require.True(t, ok)

		f := FresnelDielectric(cosI, cosT, 1.0, 1.5)
		assert.GreaterOrEqual(t, f, float32(0))
		assert.LessOrEqual(t, f, float32(1))
	}

	grazingCosI := float32(0.001)
	grazingDir := mgl32.Vec3{mgl32Sqrt(1 - grazingCosI*grazingCosI), -grazingCosI, 0}
	_, grazingCosT, ok := Refract(grazingDir, n, eta)
	require.True(t, ok)
	grazing := FresnelDielectric(grazingCosI, grazingCosT, 1.0, 1.5)
	assert.InDelta(t, 1, grazing, 1e-2, "reflectance must approach 1 at grazing incidence")
}

func TestRefractTotalInternalReflection(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	grazing := mgl32.Vec3{0.99, -0.01, 0}.Normalize()

	_, _, ok := Refract(grazing, n, 1.5/1.0)
	assert.False(t, ok)
}

func TestDirectionEquirectRoundTrip(t *testing.T) {
	dirs := []mgl32.Vec3{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 1},
		mgl32.Vec3{1, 1, 1}.Normalize(),
		mgl32.Vec3{-1, 0.3, -0.4}.Normalize(),
	}
	for _, d := range dirs {
		u, v := DirectionToEquirect(d)
		back := EquirectToDirection(u, v)
		assert.InDelta(t, 1, d.Dot(back), 1e-3)
	}
}

func TestRussianRouletteAlwaysSurvivesBeforeMinDepth(t *testing.T) {
	survive, scale := RussianRouletteSurvive(mgl32.Vec3{0.01, 0.01, 0.01}, 1, 4, 0.999)
	assert.True(t, survive)
	assert.Equal(t, float32(1), scale)
}

func TestRussianRouletteScalesThroughputWhenSurviving(t *testing.T) {
	survive, scale := RussianRouletteSurvive(mgl32.Vec3{0.5, 0.5, 0.5}, 5, 4, 0)
	assert.True(t, survive)
	assert.InDelta(t, 2, scale, 1e-4)
}
