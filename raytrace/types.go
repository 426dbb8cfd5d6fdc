package raytrace

import "github.com/go-gl/mathgl/mgl32"

// Vertex is an immutable position/shading-normal pair, created once when a
// mesh is registered and never mutated afterward.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Triangle denormalizes its three vertices directly into the primitive
// record so BVH traversal never has to chase a separate vertex buffer.
type Triangle struct {
	P0, P1, P2 mgl32.Vec3
	N0, N1, N2 mgl32.Vec3
}

// Centroid returns the triangle's centroid, used by the BVH builder to bin
// primitives along the split axis.
func (t Triangle) Centroid() mgl32.Vec3 {
	return t.P0.Add(t.P1).Add(t.P2).Mul(1.0 / 3.0)
}

// MinMax returns the triangle's axis-aligned bounding box.
func (t Triangle) MinMax() (min, max mgl32.Vec3) {
	min, max = t.P0, t.P0
	min, max = GrowAABB(min, max, t.P1)
	min, max = GrowAABB(min, max, t.P2)
	return min, max
}

// Ray carries the precomputed inverse direction for the slab test plus a
// running hit distance and a traversal-depth counter used by the
// traversal-depth debug visualization. Direction is intentionally not
// required to be unit length: local-space directions produced by transforming
// a world-space ray into an instance's local space are not renormalized, so
// that t is preserved across the transform (see DESIGN.md Open Questions).
type Ray struct {
	Origin, Dir, InvDir mgl32.Vec3
	T                    float32
	BVHDepth             uint32
}

// NewRay constructs a ray with inverse direction precomputed and t set to
// "no hit yet".
func NewRay(origin, dir mgl32.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: mgl32.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]},
		T:      RayMaxT,
	}
}

// Hit is the result of tracing a ray against the TLAS. An invalid hit uses
// the sentinel InstanceIdx == InvalidIndex; HasHit reports that.
type Hit struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
	Bary   mgl32.Vec3 // (1-v-w, v, w), sums to 1
	T      float32

	InstanceIdx uint32
	PrimIdx     uint32
}

// HasHit reports whether the hit references real geometry.
func (h Hit) HasHit() bool {
	return h.InstanceIdx != InvalidIndex && h.PrimIdx != InvalidIndex
}

// MissHit is the zero-value-equivalent "no intersection" result.
func MissHit() Hit {
	return Hit{T: RayMaxT, InstanceIdx: InvalidIndex, PrimIdx: InvalidIndex}
}

// AABB is an axis-aligned bounding box in whichever space its owner lives in
// (local space for a BLAS node, world space for a TLAS node/instance).
type AABB struct {
	Min, Max mgl32.Vec3
}

// EmptyAABB returns an AABB primed for growing (inverted extrema).
func EmptyAABB() AABB {
	const inf = float32(3.402823466e+38)
	return AABB{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
}

func (b AABB) Volume() float32 {
	return GetAABBVolume(b.Min, b.Max)
}

func (b AABB) Union(o AABB) AABB {
	min, max := GrowAABB(b.Min, b.Max, o.Min)
	min, max = GrowAABB(min, max, o.Max)
	return AABB{Min: min, Max: max}
}

// Corners returns the eight world-space corners of the box, used to build a
// conservative world-space AABB for a transformed instance (spec §3, §4.6).
func (b AABB) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		x := b.Min.X()
		if i&1 != 0 {
			x = b.Max.X()
		}
		y := b.Min.Y()
		if i&2 != 0 {
			y = b.Max.Y()
		}
		z := b.Min.Z()
		if i&4 != 0 {
			z = b.Max.Z()
		}
		c[i] = mgl32.Vec3{x, y, z}
	}
	return c
}
