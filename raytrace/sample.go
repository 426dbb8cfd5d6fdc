package raytrace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrthonormalBasis builds a tangent/bitangent pair around the unit normal n
// using the Duff et al. branchless construction, avoiding the degenerate
// case the naive "cross with (0,1,0)" approach hits when n is near the
// world Y axis.
func OrthonormalBasis(n mgl32.Vec3) (tangent, bitangent mgl32.Vec3) {
	sign := float32(1)
	if n[2] < 0 {
		sign = -1
	}
	a := -1.0 / (sign + n[2])
	b := n[0] * n[1] * a
	tangent = mgl32.Vec3{1 + sign*n[0]*n[0]*a, sign * b, -sign * n[0]}
	bitangent = mgl32.Vec3{b, sign + n[1]*n[1]*a, -n[1]}
	return tangent, bitangent
}

// CosineWeightedHemisphere samples a direction around n with PDF cos(theta)/pi,
// the importance-sampled distribution for ideal-diffuse (Lambertian) bounces.
func CosineWeightedHemisphere(n mgl32.Vec3, u1, u2 float32) mgl32.Vec3 {
	r := mgl32Sqrt(u1)
	theta := TwoPi * u2
	x := r * mgl32Cos(theta)
	y := r * mgl32Sin(theta)
	z := mgl32Sqrt(maxF(0, 1-u1))

	t, b := OrthonormalBasis(n)
	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z)).Normalize()
}

// UniformHemisphere samples a direction around n with constant PDF 1/(2*pi);
// selected by material.DiffuseSamplingMode as an alternative to
// CosineWeightedHemisphere for the purely diffuse lobe.
func UniformHemisphere(n mgl32.Vec3, u1, u2 float32) mgl32.Vec3 {
	z := u1
	r := mgl32Sqrt(maxF(0, 1-z*z))
	phi := TwoPi * u2
	x := r * mgl32Cos(phi)
	y := r * mgl32Sin(phi)

	t, b := OrthonormalBasis(n)
	return t.Mul(x).Add(b.Mul(y)).Add(n.Mul(z)).Normalize()
}

// Reflect mirrors d about n; both must be unit length, d pointing toward the
// surface (i.e. the incoming ray direction, not the direction to the light).
func Reflect(d, n mgl32.Vec3) mgl32.Vec3 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

// Refract bends d through the surface with normal n (pointing against d)
// given the relative index of refraction eta = iorFrom/iorTo. ok is false on
// total internal reflection; cosT is the cosine of the transmitted ray to
// -n, needed alongside cosI by FresnelDielectric's two-polarization terms.
func Refract(d, n mgl32.Vec3, eta float32) (refracted mgl32.Vec3, cosT float32, ok bool) {
	cosI := -d.Dot(n)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return mgl32.Vec3{}, 0, false
	}
	cosT = mgl32Sqrt(1 - sin2T)
	return d.Mul(eta).Add(n.Mul(eta*cosI - cosT)), cosT, true
}

// FresnelDielectric computes the unpolarized reflectance at a dielectric
// interface as the average of the s- and p-polarized Fresnel terms, the
// fresnel(in, out, ior_outside, ior_inside) formulation the original
// implementation uses (cosI/cosT are the incident/transmitted-ray cosines
// to the surface normal, iorFrom/iorTo the indices of the incident and
// transmitted media).
func FresnelDielectric(cosI, cosT, iorFrom, iorTo float32) float32 {
	sPolarized := (iorFrom*cosI - iorTo*cosT) / (iorFrom*cosI + iorTo*cosT)
	pPolarized := (iorFrom*cosT - iorTo*cosI) / (iorFrom*cosT + iorTo*cosI)
	return 0.5 * (sPolarized*sPolarized + pPolarized*pPolarized)
}

// RussianRouletteSurvive reports whether a path with current throughput
// should survive past depth minDepth, and if so scales survivalScale to the
// factor the surviving throughput must be multiplied by (1/p) to keep the
// estimator unbiased.
func RussianRouletteSurvive(throughput mgl32.Vec3, depth, minDepth int, u float32) (survive bool, survivalScale float32) {
	if depth < minDepth {
		return true, 1
	}
	p := maxF(throughput[0], maxF(throughput[1], throughput[2]))
	p = mgl32.Clamp(p, 0.05, 1)
	if u > p {
		return false, 0
	}
	return true, 1 / p
}

// DirectionToEquirect maps a unit direction to (u, v) in [0,1)x[0,1] on an
// equirectangular environment map, matching the original's atan2/acos
// convention.
func DirectionToEquirect(d mgl32.Vec3) (u, v float32) {
	u = (mgl32Atan2(d[2], d[0])+Pi)*InvTwoPi
	v = mgl32Acos(mgl32.Clamp(d[1], -1, 1)) * InvPi
	return u, v
}

// EquirectToDirection is the inverse of DirectionToEquirect.
func EquirectToDirection(u, v float32) mgl32.Vec3 {
	phi := u*TwoPi - Pi
	theta := v * Pi
	sinTheta := mgl32Sin(theta)
	return mgl32.Vec3{
		sinTheta * mgl32Cos(phi),
		mgl32Cos(theta),
		sinTheta * mgl32Sin(phi),
	}
}

func mgl32Sqrt(x float32) float32  { return float32(math.Sqrt(float64(x))) }
func mgl32Sin(x float32) float32   { return float32(math.Sin(float64(x))) }
func mgl32Cos(x float32) float32   { return float32(math.Cos(float64(x))) }
func mgl32Acos(x float32) float32  { return float32(math.Acos(float64(x))) }
func mgl32Atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }
