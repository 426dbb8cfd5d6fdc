// Package tlas builds and traverses the top-level acceleration structure
// over a scene's instances, each of which wraps a bvh.BLAS with its own
// world transform. Construction uses agglomerative clustering (repeated
// best-match merging) rather than binned SAH, since instance counts are
// small (bounded at 2^16 by the 16/16-bit child index packing) and the
// merge-based algorithm produces good trees without binning overhead.
package tlas

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/raytrace"
)

// MaxInstances is the hard cap imposed by packing both child indices of a
// TLASNode into 16 bits each.
const MaxInstances = 1 << 16

var (
	// ErrTooManyInstances is returned by Build when more than MaxInstances
	// instances are submitted.
	ErrTooManyInstances = errors.New("tlas: instance count exceeds 2^16")
	// ErrNoInstances is returned by Build when given zero instances.
	ErrNoInstances = errors.New("tlas: cannot build over zero instances")
)

// Instance places a BLAS in world space. WorldToLocal is cached at
// construction time so every traced ray only pays one matrix inversion's
// worth of work, not a fresh inverse per ray.
type Instance struct {
	LocalToWorld mgl32.Mat4
	WorldToLocal mgl32.Mat4
	BLAS         *bvh.BLAS
	WorldBounds  raytrace.AABB
}

// NewInstance places blas in the scene via localToWorld, precomputing the
// inverse transform and a conservative world-space AABB from the eight
// transformed corners of the BLAS's local bounds (spec §4.6).
func NewInstance(localToWorld mgl32.Mat4, blas *bvh.BLAS) Instance {
	worldToLocal := localToWorld.Inv()
	localBounds := blas.Bounds()

	min, max := raytrace.EmptyAABB().Min, raytrace.EmptyAABB().Max
	for _, corner := range localBounds.Corners() {
		world := transformPoint(localToWorld, corner)
		min, max = raytrace.GrowAABB(min, max, world)
	}

	return Instance{
		LocalToWorld: localToWorld,
		WorldToLocal: worldToLocal,
		BLAS:         blas,
		WorldBounds:  raytrace.AABB{Min: min, Max: max},
	}
}

// TLASNode packs both child indices into 16 bits each; Left == 0 marks a
// leaf (node 0 is never a valid child since it is the root), in which case
// InstanceIdx names the instance it wraps.
type TLASNode struct {
	AabbMin     mgl32.Vec3
	AabbMax     mgl32.Vec3
	Left, Right uint16
	InstanceIdx uint32
}

// IsLeaf reports whether the node directly references an instance.
func (n TLASNode) IsLeaf() bool {
	return n.Left == 0 && n.Right == 0
}

// TLAS is a built top-level acceleration structure.
type TLAS struct {
	Nodes     []TLASNode
	Instances []Instance
	nodesUsed int
}

// Build runs agglomerative clustering: every instance starts as its own
// leaf; at each step the two leaves/subtrees whose combined AABB has the
// smallest surface-area-proxy volume are merged into a new interior node,
// until one node remains. This is the same FindBestMatch/merge algorithm
// the original TLAS.cpp uses, with nodeIdx bookkeeping done via Go slices
// instead of a fixed-size C array.
func Build(instances []Instance) (*TLAS, error) {
	n := len(instances)
	if n == 0 {
		return nil, ErrNoInstances
	}
	if n > MaxInstances {
		return nil, ErrTooManyInstances
	}

	t := &TLAS{
		Instances: instances,
		Nodes:     make([]TLASNode, 2*n),
	}

	// nodeIdx[i] indexes into t.Nodes for the i-th still-live cluster;
	// active tracks how many clusters remain to be merged.
	nodeIdx := make([]int, n)
	for i := 0; i < n; i++ {
		leafSlot := i + 1 // slot 0 reserved for the eventual root
		t.Nodes[leafSlot] = TLASNode{
			AabbMin:     instances[i].WorldBounds.Min,
			AabbMax:     instances[i].WorldBounds.Max,
			InstanceIdx: uint32(i),
		}
		nodeIdx[i] = leafSlot
	}
	t.nodesUsed = n + 1

	if n == 1 {
		t.Nodes[0] = t.Nodes[nodeIdx[0]]
		return t, nil
	}

	active := n
	a := 0
	b := findBestMatch(t.Nodes, nodeIdx, active, a)
	for active > 1 {
		c := findBestMatch(t.Nodes, nodeIdx, active, b)
		if a == c {
			// a and b are mutually best matches: merge them.
			nodeA, nodeB := t.Nodes[nodeIdx[a]], t.Nodes[nodeIdx[b]]
			min, max := raytrace.GrowAABBBox(nodeA.AabbMin, nodeA.AabbMax, nodeB.AabbMin, nodeB.AabbMax)

			newIdx := t.nodesUsed
			t.nodesUsed++
			t.Nodes[newIdx] = TLASNode{
				AabbMin: min,
				AabbMax: max,
				Left:    uint16(nodeIdx[a]),
				Right:   uint16(nodeIdx[b]),
			}

			nodeIdx[a] = newIdx
			nodeIdx[b] = nodeIdx[active-1]
			active--
			b = findBestMatch(t.Nodes, nodeIdx, active, a)
		} else {
			a, b = b, c
		}
	}

	t.Nodes[0] = t.Nodes[nodeIdx[0]]
	return t, nil
}

// findBestMatch returns the index (into nodeIdx[:active]) of the cluster
// whose merge with nodeIdx[a] produces the smallest combined-AABB cost,
// excluding a itself.
func findBestMatch(nodes []TLASNode, nodeIdx []int, active, a int) int {
	best := -1
	bestCost := raytrace.RayMaxT
	nodeA := nodes[nodeIdx[a]]

	for b := 0; b < active; b++ {
		if b == a {
			continue
		}
		nodeB := nodes[nodeIdx[b]]
		min, max := raytrace.GrowAABBBox(nodeA.AabbMin, nodeA.AabbMax, nodeB.AabbMin, nodeB.AabbMax)
		cost := raytrace.GetAABBVolume(min, max)
		if cost < bestCost {
			bestCost = cost
			best = b
		}
	}
	return best
}

// NodeCount reports the number of node slots the build used.
func (t *TLAS) NodeCount() int {
	return t.nodesUsed
}

// transformPoint applies m to v as a homogeneous point (w=1), matching the
// original's vector-times-matrix convention for transforming positions
// rather than directions.
func transformPoint(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	r := m.Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 1})
	return mgl32.Vec3{r[0], r[1], r[2]}
}

// transformDirection applies m to v as a direction (w=0), used when
// transforming ray directions into an instance's local space without
// translating them.
func transformDirection(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	r := m.Mul4x1(mgl32.Vec4{v[0], v[1], v[2], 0})
	return mgl32.Vec3{r[0], r[1], r[2]}
}
