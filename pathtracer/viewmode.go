package pathtracer

import "github.com/wavecore/pathtracer/pathtracer/trace"

// RenderViewMode is an alias for trace.RenderViewMode so callers of this
// package don't need a separate import for the common case; the type is
// defined once, in pathtracer/trace, per the module layout.
type RenderViewMode = trace.RenderViewMode

const (
	ViewModeNone                       = trace.ViewModeNone
	ViewModeHitAlbedo                  = trace.ViewModeHitAlbedo
	ViewModeHitNormal                  = trace.ViewModeHitNormal
	ViewModeHitBarycentrics            = trace.ViewModeHitBarycentrics
	ViewModeHitSpecRefract             = trace.ViewModeHitSpecRefract
	ViewModeHitAbsorption              = trace.ViewModeHitAbsorption
	ViewModeHitEmissive                = trace.ViewModeHitEmissive
	ViewModeDepth                      = trace.ViewModeDepth
	ViewModeAccelerationStructureDepth = trace.ViewModeAccelerationStructureDepth
	ViewModeRayRecursionDepth          = trace.ViewModeRayRecursionDepth
	ViewModeRussianRouletteKillDepth   = trace.ViewModeRussianRouletteKillDepth
)

// ParseRenderViewMode resolves a config/flag string to a RenderViewMode.
func ParseRenderViewMode(name string) (RenderViewMode, error) {
	return trace.ParseRenderViewMode(name)
}
