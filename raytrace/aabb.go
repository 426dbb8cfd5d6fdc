package raytrace

import "github.com/go-gl/mathgl/mgl32"

func vec3Min(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minF(a[0], b[0]), minF(a[1], b[1]), minF(a[2], b[2])}
}

func vec3Max(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxF(a[0], b[0]), maxF(a[1], b[1]), maxF(a[2], b[2])}
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// GrowAABB expands [min, max] to also enclose p.
func GrowAABB(min, max, p mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	return vec3Min(min, p), vec3Max(max, p)
}

// GrowAABBBox expands [min, max] to also enclose [oMin, oMax].
func GrowAABBBox(min, max, oMin, oMax mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	min, max = GrowAABB(min, max, oMin)
	return GrowAABB(min, max, oMax)
}

// GetAABBVolume is the surface-area-heuristic cost proxy: prim_count times
// this value is the SAH cost contribution of a node or bin. Despite the
// name, it returns xy + yz + zx of the box extent (half the surface area,
// not a volume), so a flat box still has a nonzero cost; the factor of two
// does not change the SAH comparison since all candidate planes are scored
// with the same proxy. A box with a negative extent returns 0.
func GetAABBVolume(min, max mgl32.Vec3) float32 {
	extent := max.Sub(min)
	if extent[0] < 0 || extent[1] < 0 || extent[2] < 0 {
		return 0
	}
	return extent[0]*extent[1] + extent[1]*extent[2] + extent[2]*extent[0]
}

// IntersectAABB4 is the four-lane slab test from spec §4.4: aabbMin/aabbMax
// are padded to four lanes (the fourth lane is unused scratch, mirroring the
// original's SSE __m128 layout), subtracted from the ray origin and scaled
// by the inverse direction, then min/max-reduced across the first three
// lanes. Returns tmin on a hit within (0, ray.T), or RayMaxT on a miss. Go has
// no portable SSE intrinsic, so this is expressed as plain scalar code over
// an explicit 4-lane array shape rather than hardware vector instructions;
// see DESIGN.md for why that gap is left as-is.
func IntersectAABB4(aabbMin, aabbMax [4]float32, ray *Ray) float32 {
	origin := [3]float32{ray.Origin[0], ray.Origin[1], ray.Origin[2]}
	invDir := [3]float32{ray.InvDir[0], ray.InvDir[1], ray.InvDir[2]}

	var tmin, tmax float32
	for axis := 0; axis < 3; axis++ {
		t1 := (aabbMin[axis] - origin[axis]) * invDir[axis]
		t2 := (aabbMax[axis] - origin[axis]) * invDir[axis]
		lo, hi := t1, t2
		if lo > hi {
			lo, hi = hi, lo
		}
		if axis == 0 {
			tmin, tmax = lo, hi
		} else {
			tmin = maxF(tmin, lo)
			tmax = minF(tmax, hi)
		}
	}

	if tmax >= tmin && tmin < ray.T && tmax > 0 {
		return tmin
	}
	return RayMaxT
}

// Lanes4 pads a vec3 into the four-lane shape IntersectAABB4 expects.
func Lanes4(v mgl32.Vec3) [4]float32 {
	return [4]float32{v[0], v[1], v[2], 0}
}
