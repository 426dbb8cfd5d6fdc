package bvh

import "github.com/wavecore/pathtracer/raytrace"

// TraceRay walks the BLAS with an explicit depth-64 stack, always
// descending into the nearer child first so that once a leaf produces a
// hit, a sibling subtree whose AABB is already farther than ray.T can be
// skipped without testing it. instanceIdx lets the TLAS tag hits with the
// owning instance; triangle indices in the hit stay local to this BLAS.
func (b *BLAS) TraceRay(ray *raytrace.Ray, hit *raytrace.Hit, instanceIdx uint32) {
	var stack [raytrace.MaxTraversalStackDepth]int
	stackPtr := 0
	nodeIdx := 0

	for {
		node := &b.Nodes[nodeIdx]
		if node.IsLeaf() {
			for i := uint32(0); i < node.PrimCount; i++ {
				triIdx := b.triIdx[node.LeftFirst+i]
				tri := b.Triangles[triIdx]
				if u, v, ok := raytrace.IntersectTriangle(ray, tri); ok {
					bary := raytrace.Barycentric(u, v)
					hit.T = ray.T
					hit.Bary = bary
					hit.Pos = raytrace.InterpolatePosition(tri, bary)
					hit.Normal = raytrace.InterpolateNormal(tri, bary)
					hit.InstanceIdx = instanceIdx
					hit.PrimIdx = triIdx
				}
			}
			if stackPtr == 0 {
				return
			}
			stackPtr--
			nodeIdx = stack[stackPtr]
			continue
		}

		ray.BVHDepth++
		left := int(node.LeftFirst)
		right := left + 1
		tLeft := raytrace.IntersectAABB4(raytrace.Lanes4(b.Nodes[left].AabbMin), raytrace.Lanes4(b.Nodes[left].AabbMax), ray)
		tRight := raytrace.IntersectAABB4(raytrace.Lanes4(b.Nodes[right].AabbMin), raytrace.Lanes4(b.Nodes[right].AabbMax), ray)

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
