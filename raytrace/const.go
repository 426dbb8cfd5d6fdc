// Package raytrace holds the primitive geometry, ray, and hit types shared by
// the BVH/TLAS builders and traversers, plus the small math/sampling/color
// utility functions the path integrator needs on top of them. It has no
// dependency on any other package in this module — everything else is built
// on top of it.
package raytrace

import "math"

const (
	Pi       = float32(math.Pi)
	TwoPi    = 2 * Pi
	InvPi    = 1 / Pi
	InvTwoPi = 1 / TwoPi

	// RayMaxT is the sentinel "no hit yet" distance a fresh ray starts with.
	RayMaxT = float32(math.MaxFloat32)

	// RayNudge offsets a bounce's new origin off the hit surface to avoid
	// immediately re-intersecting the same triangle due to float error.
	RayNudge = 1e-3

	// TriangleEpsilon is the Möller-Trumbore determinant rejection threshold.
	// Tunable; see DESIGN.md Open Questions for why this default is kept.
	TriangleEpsilon = 1e-11

	// InvalidIndex is the sentinel for "no instance"/"no primitive" on a miss.
	InvalidIndex = ^uint32(0)

	// MaxTraversalStackDepth bounds the explicit stack used by both BLAS and
	// TLAS traversal.
	MaxTraversalStackDepth = 64
)
