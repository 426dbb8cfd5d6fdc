// Package camera constructs pinhole primary rays for the frame coordinator.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/raytrace"
)

// Camera is a pinhole camera placed by a single local-to-world transform;
// position is ToWorld's translation column and basis vectors are its
// rotation columns, matching how the TLAS instance transform is expressed.
type Camera struct {
	ToWorld mgl32.Mat4
	VFovDeg float32
}

// New returns a camera looking from eye toward target, with up as the
// world-space up hint (Gram-Schmidt'd against the view direction).
func New(eye, target, up mgl32.Vec3, vfovDeg float32) Camera {
	forward := target.Sub(eye).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	toWorld := mgl32.Mat4{
		right[0], right[1], right[2], 0,
		trueUp[0], trueUp[1], trueUp[2], 0,
		-forward[0], -forward[1], -forward[2], 0,
		eye[0], eye[1], eye[2], 1,
	}

	return Camera{ToWorld: toWorld, VFovDeg: vfovDeg}
}

// PrimaryRay builds the ray through pixel (px, py) of a width x height
// frame, with a 0.5-pixel center offset so pixel (0,0)'s ray passes through
// its cell's midpoint rather than its corner, and the NDC remap accounting
// for aspect ratio so a square pixel grid doesn't stretch circles into
// ellipses in a non-square frame.
func (c Camera) PrimaryRay(px, py, width, height int) raytrace.Ray {
	aspect := float32(width) / float32(height)
	tanHalfFov := float32(math.Tan(float64(c.VFovDeg) * math.Pi / 360))

	ndcX := (2*((float32(px)+0.5)/float32(width)) - 1) * aspect * tanHalfFov
	ndcY := (1 - 2*((float32(py)+0.5)/float32(height))) * tanHalfFov

	localDir := mgl32.Vec3{ndcX, ndcY, -1}.Normalize()
	worldDir := transformDirection(c.ToWorld, localDir)
	origin := mgl32.Vec3{c.ToWorld[12], c.ToWorld[13], c.ToWorld[14]}

	return raytrace.NewRay(origin, worldDir)
}

func transformDirection(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	r := m.Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 0})
	return mgl32.Vec3{r[0], r[1], r[2]}
}
