package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecore/pathtracer/pathtracer/trace"
)

func TestRenderViewMode_String_RoundTripsThroughParse(t *testing.T) {
	modes := []trace.RenderViewMode{
		trace.ViewModeNone,
		trace.ViewModeHitAlbedo,
		trace.ViewModeHitNormal,
		trace.ViewModeHitBarycentrics,
		trace.ViewModeHitSpecRefract,
		trace.ViewModeHitAbsorption,
		trace.ViewModeHitEmissive,
		trace.ViewModeDepth,
		trace.ViewModeAccelerationStructureDepth,
		trace.ViewModeRayRecursionDepth,
		trace.ViewModeRussianRouletteKillDepth,
	}

	for _, m := range modes {
		parsed, err := trace.ParseRenderViewMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestRenderViewMode_IsFullIntegration_OnlyNone(t *testing.T) {
	assert.True(t, trace.ViewModeNone.IsFullIntegration())
	assert.False(t, trace.ViewModeHitAlbedo.IsFullIntegration())
	assert.False(t, trace.ViewModeRussianRouletteKillDepth.IsFullIntegration())
}

func TestParseRenderViewMode_UnknownNameErrors(t *testing.T) {
	_, err := trace.ParseRenderViewMode("not_a_real_mode")
	assert.Error(t, err)
}
