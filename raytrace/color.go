package raytrace

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ElemMul is the component-wise (Hadamard) product, used throughout the
// integrator to modulate throughput by albedo/transmittance/Fresnel terms;
// mgl32.Vec3 has no built-in elementwise multiply.
func ElemMul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// LinearToSRGB applies the IEC 61966-2-1 transfer function component-wise.
func LinearToSRGB(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{srgbEncode(c[0]), srgbEncode(c[1]), srgbEncode(c[2])}
}

// SRGBToLinear is the inverse of LinearToSRGB.
func SRGBToLinear(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{srgbDecode(c[0]), srgbDecode(c[1]), srgbDecode(c[2])}
}

func srgbEncode(x float32) float32 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return 1.055*float32(math.Pow(float64(x), 1/2.4)) - 0.055
}

func srgbDecode(x float32) float32 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return float32(math.Pow(float64((x+0.055)/1.055), 2.4))
}

// ReinhardTonemap is the simple x/(1+x) operator.
func ReinhardTonemap(c mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{c[0] / (1 + c[0]), c[1] / (1 + c[1]), c[2] / (1 + c[2])}
}

// ReinhardWhiteTonemap is the extended Reinhard operator with a white point,
// the default tonemap the original post-process pass uses.
func ReinhardWhiteTonemap(c mgl32.Vec3, whitePoint float32) mgl32.Vec3 {
	w2 := whitePoint * whitePoint
	f := func(x float32) float32 {
		return x * (1 + x/w2) / (1 + x)
	}
	return mgl32.Vec3{f(c[0]), f(c[1]), f(c[2])}
}

// ApplyExposure scales linear color by 2^stops, applied before tonemapping.
func ApplyExposure(c mgl32.Vec3, stops float32) mgl32.Vec3 {
	scale := float32(math.Pow(2, float64(stops)))
	return c.Mul(scale)
}

// ApplyContrast pivots around mid-gray (0.5) in linear space.
func ApplyContrast(c mgl32.Vec3, contrast float32) mgl32.Vec3 {
	apply := func(x float32) float32 {
		return (x-0.5)*contrast + 0.5
	}
	return mgl32.Vec3{apply(c[0]), apply(c[1]), apply(c[2])}
}

// ApplyBrightness adds a flat offset.
func ApplyBrightness(c mgl32.Vec3, brightness float32) mgl32.Vec3 {
	return c.Add(mgl32.Vec3{brightness, brightness, brightness})
}

// ApplySaturation lerps between luminance-gray and the original color.
func ApplySaturation(c mgl32.Vec3, saturation float32) mgl32.Vec3 {
	lum := c[0]*0.2126 + c[1]*0.7152 + c[2]*0.0722
	gray := mgl32.Vec3{lum, lum, lum}
	return gray.Add(c.Sub(gray).Mul(saturation))
}

// PackRGBA8 clamps each channel to [0,1], scales to [0,255], and packs into
// a single little-endian 0xAABBGGRR uint32, the framebuffer pixel format
// spec §4.5.3 names.
func PackRGBA8(c mgl32.Vec3, a float32) uint32 {
	r := uint32(mgl32.Clamp(c[0], 0, 1)*255 + 0.5)
	g := uint32(mgl32.Clamp(c[1], 0, 1)*255 + 0.5)
	b := uint32(mgl32.Clamp(c[2], 0, 1)*255 + 0.5)
	aa := uint32(mgl32.Clamp(a, 0, 1)*255 + 0.5)
	return aa<<24 | b<<16 | g<<8 | r
}
