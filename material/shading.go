package material

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/raytrace"
)

// DiffuseSamplingMode selects the hemisphere sampling strategy Shade's
// purely-diffuse branch uses.
type DiffuseSamplingMode int

const (
	// CosineWeightedDiffuse importance-samples with pdf cos(theta)/pi, so
	// the pdf cancels against the Lambertian BSDF's cos(theta)/pi term and
	// the throughput multiplier reduces to plain albedo.
	CosineWeightedDiffuse DiffuseSamplingMode = iota
	// UniformDiffuse samples with the constant pdf 1/(2*pi); the BSDF no
	// longer cancels, so the throughput multiplier carries the explicit
	// (albedo/pi)*cos(theta) / (1/(2*pi)) = albedo*2*cos(theta) weight.
	UniformDiffuse
)

var diffuseSamplingModeNames = map[DiffuseSamplingMode]string{
	CosineWeightedDiffuse: "cosine",
	UniformDiffuse:        "uniform",
}

// String implements fmt.Stringer.
func (m DiffuseSamplingMode) String() string {
	if name, ok := diffuseSamplingModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DiffuseSamplingMode(%d)", int(m))
}

// ParseDiffuseSamplingMode resolves a config/flag string to a
// DiffuseSamplingMode.
func ParseDiffuseSamplingMode(name string) (DiffuseSamplingMode, error) {
	for mode, n := range diffuseSamplingModeNames {
		if n == name {
			return mode, nil
		}
	}
	return CosineWeightedDiffuse, fmt.Errorf("material: unknown diffuse sampling mode %q", name)
}

// ShadeResult is what shading a single hit produces: the next ray to
// trace (zero value if Terminated), the throughput multiplier that bounce
// contributes, and any radiance emitted directly at the hit.
type ShadeResult struct {
	NextRay    raytrace.Ray
	Throughput mgl32.Vec3
	Emitted    mgl32.Vec3
	Terminated bool
}

// Shade samples the next bounce at hit according to mat's diffuse/
// specular/refractive lobe weights. Both the megakernel's inline loop and
// the wavefront shade stage call this same function, so their per-bounce
// behavior is identical by construction — the parity property spec §8
// calls for between the two integrator forms.
func Shade(hit raytrace.Hit, mat Material, rayDir mgl32.Vec3, rnd *rand.Rand, diffuseMode DiffuseSamplingMode) ShadeResult {
	if mat.IsEmissive() {
		return ShadeResult{Emitted: mat.EmissiveVec(), Terminated: true}
	}

	lobe := rnd.Float32()
	switch {
	case lobe < mat.Refractivity:
		return shadeRefractive(hit, mat, rayDir, rnd)
	case lobe < mat.Refractivity+mat.Specular:
		origin := hit.Pos.Add(hit.Normal.Mul(raytrace.RayNudge))
		dir := raytrace.Reflect(rayDir, hit.Normal)
		return ShadeResult{NextRay: raytrace.NewRay(origin, dir), Throughput: mat.AlbedoVec()}
	default:
		origin := hit.Pos.Add(hit.Normal.Mul(raytrace.RayNudge))
		if diffuseMode == UniformDiffuse {
			dir := raytrace.UniformHemisphere(hit.Normal, rnd.Float32(), rnd.Float32())
			cosTheta := dir.Dot(hit.Normal)
			return ShadeResult{NextRay: raytrace.NewRay(origin, dir), Throughput: mat.AlbedoVec().Mul(2 * cosTheta)}
		}
		dir := raytrace.CosineWeightedHemisphere(hit.Normal, rnd.Float32(), rnd.Float32())
		return ShadeResult{NextRay: raytrace.NewRay(origin, dir), Throughput: mat.AlbedoVec()}
	}
}

// shadeRefractive handles the dielectric lobe: a Fresnel-weighted
// stochastic choice between reflection and transmission, with Beer's-law
// attenuation applied on exit using the distance the prior (internal) ray
// travelled — hit.T of the exiting ray is exactly that distance, since the
// internal ray's origin was the entry point.
func shadeRefractive(hit raytrace.Hit, mat Material, rayDir mgl32.Vec3, rnd *rand.Rand) ShadeResult {
	n := hit.Normal
	cosI := -rayDir.Dot(n)
	entering := cosI > 0

	iorFrom, iorTo := float32(1), mat.IOR
	if !entering {
		n = n.Mul(-1)
		cosI = -cosI
		iorFrom, iorTo = mat.IOR, 1
	}

	eta := iorFrom / iorTo
	refracted, cosT, canRefract := raytrace.Refract(rayDir, n, eta)
	fresnel := raytrace.FresnelDielectric(cosI, cosT, iorFrom, iorTo)
	if !canRefract {
		fresnel = 1 // total internal reflection
	}

	throughput := mgl32.Vec3{1, 1, 1}
	if !entering {
		throughput = beersLawAttenuation(mat.AbsorptionVec(), hit.T)
	}

	if rnd.Float32() < fresnel {
		origin := hit.Pos.Add(n.Mul(raytrace.RayNudge))
		dir := raytrace.Reflect(rayDir, n)
		return ShadeResult{NextRay: raytrace.NewRay(origin, dir), Throughput: throughput}
	}

	origin := hit.Pos.Sub(n.Mul(raytrace.RayNudge))
	return ShadeResult{NextRay: raytrace.NewRay(origin, refracted), Throughput: throughput}
}

func beersLawAttenuation(absorption mgl32.Vec3, distance float32) mgl32.Vec3 {
	return mgl32.Vec3{
		expF(-absorption[0] * distance),
		expF(-absorption[1] * distance),
		expF(-absorption[2] * distance),
	}
}

func expF(x float32) float32 {
	return float32(math.Exp(float64(x)))
}
