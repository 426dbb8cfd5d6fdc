package tlas

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/wavecore/pathtracer/raytrace"
)

// TraceRay walks the TLAS the same way bvh.BLAS.TraceRay walks a BLAS:
// explicit depth-64 stack, nearer child first. At a leaf the ray is
// transformed into the instance's local space and handed to its BLAS;
// the resulting hit.T is shared between both spaces since both rays use
// the same parametrization (the local-space ray direction is not
// renormalized after the transform, so its magnitude carries the scale
// the transform applied — see DESIGN.md Open Questions).
func (t *TLAS) TraceRay(ray *raytrace.Ray, hit *raytrace.Hit) {
	if len(t.Nodes) == 0 || len(t.Instances) == 0 {
		// An empty scene (no instances submitted this frame) always
		// misses, per spec §8's boundary behavior — rather than requiring
		// every caller to special-case a nil/zero-value TLAS.
		return
	}

	var stack [raytrace.MaxTraversalStackDepth]int
	stackPtr := 0
	nodeIdx := 0

	for {
		node := &t.Nodes[nodeIdx]
		if node.IsLeaf() {
			inst := &t.Instances[node.InstanceIdx]
			localRay := raytrace.Ray{
				Origin:   transformPoint(inst.WorldToLocal, ray.Origin),
				Dir:      transformDirection(inst.WorldToLocal, ray.Dir),
				T:        ray.T,
				BVHDepth: ray.BVHDepth,
			}
			localRay.InvDir = invertSafe(localRay.Dir)

			inst.BLAS.TraceRay(&localRay, hit, node.InstanceIdx)
			ray.T = localRay.T
			ray.BVHDepth = localRay.BVHDepth

			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}

		ray.BVHDepth++
		left := int(node.Left)
		right := int(node.Right)
		tLeft := raytrace.IntersectAABB4(raytrace.Lanes4(t.Nodes[left].AabbMin), raytrace.Lanes4(t.Nodes[left].AabbMax), ray)
		tRight := raytrace.IntersectAABB4(raytrace.Lanes4(t.Nodes[right].AabbMin), raytrace.Lanes4(t.Nodes[right].AabbMax), ray)

		if tLeft > tRight {
			left, right = right, left
			tLeft, tRight = tRight, tLeft
		}

		if tLeft == raytrace.RayMaxT {
			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}

		nodeIdx = left
		if tRight != raytrace.RayMaxT {
			stack[stackPtr] = right
			stackPtr++
		}
	}
}

func invertSafe(d mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{1 / d[0], 1 / d[1], 1 / d[2]}
}
