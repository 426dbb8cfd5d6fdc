package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPrimaryRayCenterPixelPointsForward(t *testing.T) {
	cam := New(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 60)

	ray := cam.PrimaryRay(960, 540, 1920, 1080)
	assert.InDelta(t, 0, ray.Dir[0], 1e-3)
	assert.InDelta(t, 0, ray.Dir[1], 1e-3)
	assert.Less(t, ray.Dir[2], float32(0))
}

func TestPrimaryRayOriginMatchesEyePosition(t *testing.T) {
	eye := mgl32.Vec3{1, 2, 3}
	cam := New(eye, eye.Add(mgl32.Vec3{0, 0, -1}), mgl32.Vec3{0, 1, 0}, 60)

	ray := cam.PrimaryRay(0, 0, 100, 100)
	assert.InDelta(t, eye[0], ray.Origin[0], 1e-4)
	assert.InDelta(t, eye[1], ray.Origin[1], 1e-4)
	assert.InDelta(t, eye[2], ray.Origin[2], 1e-4)
}

func TestPrimaryRayDirectionIsNormalized(t *testing.T) {
	cam := New(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 90)
	ray := cam.PrimaryRay(0, 0, 200, 100)
	assert.InDelta(t, 1, ray.Dir.Len(), 1e-4)
}

func TestWiderAspectRatioStretchesHorizontalExtent(t *testing.T) {
	cam := New(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 60)

	wide := cam.PrimaryRay(0, 50, 200, 100)  // left edge, wide frame
	square := cam.PrimaryRay(0, 50, 100, 100) // left edge, square frame

	assert.Less(t, wide.Dir[0], square.Dir[0])
}
