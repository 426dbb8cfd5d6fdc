package raytrace

import "github.com/go-gl/mathgl/mgl32"

// IntersectTriangle is the Möller–Trumbore ray/triangle test used at every
// BVH leaf. On a closer hit it mutates ray.T and returns the barycentric
// coordinates (u, v) with w = 1-u-v implied; ok is false on a miss, a
// parallel or degenerate triangle (|det| < TriangleEpsilon), or a hit behind
// the ray origin or beyond the ray's current t. Back-facing triangles are
// not culled.
func IntersectTriangle(ray *Ray, tri Triangle) (u, v float32, ok bool) {
	edge1 := tri.P1.Sub(tri.P0)
	edge2 := tri.P2.Sub(tri.P0)

	h := ray.Dir.Cross(edge2)
	det := edge1.Dot(h)
	if det > -TriangleEpsilon && det < TriangleEpsilon {
		return 0, 0, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(tri.P0)
	u = invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, false
	}

	q := s.Cross(edge1)
	v = invDet * ray.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, false
	}

	t := invDet * edge2.Dot(q)
	if t < TriangleEpsilon || t >= ray.T {
		return 0, 0, false
	}

	ray.T = t
	return u, v, true
}

// Barycentric returns (w, u, v) from the (u, v) pair IntersectTriangle
// produces, so callers always have the full weight triple at hand.
func Barycentric(u, v float32) mgl32.Vec3 {
	return mgl32.Vec3{1 - u - v, u, v}
}

// InterpolateNormal blends the triangle's three vertex normals by the
// barycentric weights, producing the shading normal described in spec §3 —
// no separate "geometric" face normal is computed or stored.
func InterpolateNormal(tri Triangle, bary mgl32.Vec3) mgl32.Vec3 {
	n := tri.N0.Mul(bary[0]).Add(tri.N1.Mul(bary[1])).Add(tri.N2.Mul(bary[2]))
	return n.Normalize()
}

// InterpolatePosition blends the triangle's three vertex positions by the
// barycentric weights, equivalent to ray.Origin + ray.Dir*t but independent
// of any floating-point drift that a second evaluation of the ray equation
// would introduce.
func InterpolatePosition(tri Triangle, bary mgl32.Vec3) mgl32.Vec3 {
	return tri.P0.Mul(bary[0]).Add(tri.P1.Mul(bary[1])).Add(tri.P2.Mul(bary[2]))
}
