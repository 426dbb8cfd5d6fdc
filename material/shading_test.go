package material

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/pathtracer/raytrace"
)

func flatHit(normal mgl32.Vec3) raytrace.Hit {
	return raytrace.Hit{
		Pos:    mgl32.Vec3{0, 0, 0},
		Normal: normal,
		T:      1,
	}
}

func TestShade_EmissiveTerminatesWithNoFurtherBounce(t *testing.T) {
	mat := MakeEmissive("bulb", [3]float32{0, 0, 0}, [3]float32{2, 2, 2})
	rnd := rand.New(rand.NewSource(1))

	result := Shade(flatHit(mgl32.Vec3{0, 1, 0}), mat, mgl32.Vec3{0, -1, 0}, rnd, CosineWeightedDiffuse)

	assert.True(t, result.Terminated)
	assert.Equal(t, mat.EmissiveVec(), result.Emitted)
}

func TestShade_DiffuseBouncesIntoUpperHemisphere(t *testing.T) {
	mat := MakeDiffuse("floor", [3]float32{0.8, 0.8, 0.8})
	rnd := rand.New(rand.NewSource(7))

	normal := mgl32.Vec3{0, 1, 0}
	result := Shade(flatHit(normal), mat, mgl32.Vec3{0.2, -0.9, 0.1}.Normalize(), rnd, CosineWeightedDiffuse)

	assert.False(t, result.Terminated)
	assert.Equal(t, mat.AlbedoVec(), result.Throughput)
	assert.Greater(t, result.NextRay.Dir.Dot(normal), float32(0), "diffuse bounce must stay on the same side as the normal")
}

func TestShade_SpecularReflectsAboutNormal(t *testing.T) {
	mat := MakeSpecular("mirror", [3]float32{1, 1, 1}, 1.0)
	rnd := rand.New(rand.NewSource(3))

	normal := mgl32.Vec3{0, 1, 0}
	incoming := mgl32.Vec3{1, -1, 0}.Normalize()
	result := Shade(flatHit(normal), mat, incoming, rnd, CosineWeightedDiffuse)

	expected := raytrace.Reflect(incoming, normal)
	assert.InDelta(t, expected[0], result.NextRay.Dir[0], 1e-5)
	assert.InDelta(t, expected[1], result.NextRay.Dir[1], 1e-5)
	assert.InDelta(t, expected[2], result.NextRay.Dir[2], 1e-5)
}

func TestShade_RefractiveEnteringConservesOpaqueThroughput(t *testing.T) {
	mat := MakeRefractive("glass", 1.0, 1.5, [3]float32{0, 0, 0})
	rnd := rand.New(rand.NewSource(5))

	normal := mgl32.Vec3{0, 1, 0}
	incoming := mgl32.Vec3{0, -1, 0}
	result := Shade(flatHit(normal), mat, incoming, rnd, CosineWeightedDiffuse)

	assert.False(t, result.Terminated)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, result.Throughput, "zero absorption on entry must not attenuate")
}

func TestShade_UniformDiffuseWeightsThroughputByTwiceCosine(t *testing.T) {
	mat := MakeDiffuse("floor", [3]float32{0.8, 0.8, 0.8})
	rnd := rand.New(rand.NewSource(11))

	normal := mgl32.Vec3{0, 1, 0}
	result := Shade(flatHit(normal), mat, mgl32.Vec3{0.2, -0.9, 0.1}.Normalize(), rnd, UniformDiffuse)

	require.False(t, result.Terminated)
	cosTheta := result.NextRay.Dir.Dot(normal)
	require.Greater(t, cosTheta, float32(0))
	expected := mat.AlbedoVec().Mul(2 * cosTheta)
	assert.InDelta(t, expected[0], result.Throughput[0], 1e-5)
	assert.InDelta(t, expected[1], result.Throughput[1], 1e-5)
	assert.InDelta(t, expected[2], result.Throughput[2], 1e-5)
}

func TestParseDiffuseSamplingMode_RoundTripsThroughString(t *testing.T) {
	for _, mode := range []DiffuseSamplingMode{CosineWeightedDiffuse, UniformDiffuse} {
		parsed, err := ParseDiffuseSamplingMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}

func TestParseDiffuseSamplingMode_UnknownNameErrors(t *testing.T) {
	_, err := ParseDiffuseSamplingMode("not_a_real_mode")
	assert.Error(t, err)
}

func TestBeersLawAttenuation_ZeroDistanceIsNoAttenuation(t *testing.T) {
	out := beersLawAttenuation(mgl32.Vec3{0.5, 0.5, 0.5}, 0)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, out)
}

func TestBeersLawAttenuation_LongerDistanceAttenuatesMore(t *testing.T) {
	near := beersLawAttenuation(mgl32.Vec3{1, 1, 1}, 1)
	far := beersLawAttenuation(mgl32.Vec3{1, 1, 1}, 5)
	assert.Less(t, far[0], near[0])
}
