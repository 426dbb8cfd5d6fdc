// Package trace owns the render-view/debug-visualization enumeration
// recovered from original_source/Source/Renderer/CPUPathtracer.cpp (spec
// §4.5.3 names this feature set in one sentence; the original exercises
// eleven distinct modes). It is a standalone leaf package — like raytrace
// and material — so both package pathtracer (the megakernel's debug-view
// switch) and pathtracer/wavefront could select a mode without either
// importing the other.
package trace

import "fmt"

// RenderViewMode selects a debug visualization that produces a per-pixel
// diagnostic quantity instead of integrated radiance (spec §7). The debug
// values are merged into the accumulator and resolved with post-processing
// exactly like radiance; they are not written straight to the framebuffer.
type RenderViewMode int

const (
	ViewModeNone RenderViewMode = iota
	ViewModeHitAlbedo
	ViewModeHitNormal
	ViewModeHitBarycentrics
	ViewModeHitSpecRefract
	ViewModeHitAbsorption
	ViewModeHitEmissive
	ViewModeDepth
	ViewModeAccelerationStructureDepth
	ViewModeRayRecursionDepth
	ViewModeRussianRouletteKillDepth
)

var viewModeNames = map[RenderViewMode]string{
	ViewModeNone:                       "none",
	ViewModeHitAlbedo:                  "hit_albedo",
	ViewModeHitNormal:                  "hit_normal",
	ViewModeHitBarycentrics:            "hit_barycentrics",
	ViewModeHitSpecRefract:             "hit_spec_refract",
	ViewModeHitAbsorption:              "hit_absorption",
	ViewModeHitEmissive:                "hit_emissive",
	ViewModeDepth:                      "depth",
	ViewModeAccelerationStructureDepth: "acceleration_structure_depth",
	ViewModeRayRecursionDepth:          "ray_recursion_depth",
	ViewModeRussianRouletteKillDepth:   "russian_roulette_kill_depth",
}

// String implements fmt.Stringer.
func (m RenderViewMode) String() string {
	if name, ok := viewModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RenderViewMode(%d)", int(m))
}

// ParseRenderViewMode resolves a config/flag string to a RenderViewMode.
func ParseRenderViewMode(name string) (RenderViewMode, error) {
	for mode, n := range viewModeNames {
		if n == name {
			return mode, nil
		}
	}
	return ViewModeNone, fmt.Errorf("trace: unknown render view mode %q", name)
}

// IsFullIntegration reports whether this mode runs the full path
// integrator (true only for ViewModeNone). Of the other modes, the hit and
// Depth modes stop after the primary hit, AccelerationStructureDepth reports
// the primary ray's traversal depth, and RayRecursionDepth and
// RussianRouletteKillDepth replay the full bounce loop.
func (m RenderViewMode) IsFullIntegration() bool {
	return m == ViewModeNone
}
