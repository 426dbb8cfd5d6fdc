package texture

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/raytrace"
)

// Environment is an equirectangular HDR environment map sampled by a ray
// that escapes the scene without hitting geometry. Pixels are stored
// unclamped linear radiance, row-major starting at the top (v=0).
type Environment struct {
	Width, Height int
	Pixels        []mgl32.Vec3
}

// NewEnvironment wraps an already-decoded equirect radiance buffer.
func NewEnvironment(width, height int, pixels []mgl32.Vec3) *Environment {
	return &Environment{Width: width, Height: height, Pixels: pixels}
}

// NewConstantEnvironment returns a uniform-radiance environment, used as
// the default "sky" when no HDR asset is configured.
func NewConstantEnvironment(radiance mgl32.Vec3) *Environment {
	return &Environment{Width: 1, Height: 1, Pixels: []mgl32.Vec3{radiance}}
}

// Sample returns the bilinearly-filtered radiance in direction dir.
func (e *Environment) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	if e.Width <= 1 && e.Height <= 1 {
		return e.Pixels[0]
	}

	u, v := raytrace.DirectionToEquirect(dir)
	fx := u*float32(e.Width) - 0.5
	fy := v*float32(e.Height) - 0.5

	x0 := wrapInt(int(floorF(fx)), e.Width)
	y0 := clampInt(int(floorF(fy)), 0, e.Height-1)
	x1 := wrapInt(x0+1, e.Width)
	y1 := clampInt(y0+1, 0, e.Height-1)

	tx := fx - floorF(fx)
	ty := fy - floorF(fy)

	c00 := e.at(x0, y0)
	c10 := e.at(x1, y0)
	c01 := e.at(x0, y1)
	c11 := e.at(x1, y1)

	top := lerpVec3(c00, c10, tx)
	bottom := lerpVec3(c01, c11, tx)
	return lerpVec3(top, bottom, ty)
}

func (e *Environment) at(x, y int) mgl32.Vec3 {
	return e.Pixels[y*e.Width+x]
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorF(x float32) float32 {
	i := float32(int(x))
	if x < 0 && i != x {
		return i - 1
	}
	return i
}
