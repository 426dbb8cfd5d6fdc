package pathtracer

import (
	"fmt"
	"time"
)

// Metrics aggregates statistics about the render for final reporting,
// following the teacher's Metrics/Print shape directly.
type Metrics struct {
	FramesRendered int   // Number of frames rendered so far
	PrimaryRays    int64 // Number of primary rays traced
	TotalRays      int64 // Rays counted so far; only primary rays are counted, so this equals PrimaryRays
	TotalBounces   int64 // Bounce events; Renderer does not update it, so it stays 0
	RussianRouletteKills int64 // Russian-roulette terminations; Renderer does not update it, so it stays 0

	// AverageEnergy is a running average of the mean per-pixel accumulated
	// radiance, recovered from the original CPUPathtracer.cpp's
	// avg_energy_accumulator diagnostic.
	AverageEnergy float32

	LastFrameDuration time.Duration // Wall-clock time of the most recent Render call
	TotalDuration     time.Duration // Cumulative wall-clock render time
}

// Print displays aggregated metrics at the end of a render.
func (m *Metrics) Print() {
	fmt.Println("=== Render Metrics ===")
	fmt.Printf("Frames Rendered      : %d\n", m.FramesRendered)
	fmt.Printf("Primary Rays         : %d\n", m.PrimaryRays)
	fmt.Printf("Total Rays           : %d\n", m.TotalRays)
	fmt.Printf("Total Bounces        : %d\n", m.TotalBounces)
	fmt.Printf("Russian Roulette Kills : %d\n", m.RussianRouletteKills)
	fmt.Printf("Average Energy       : %f\n", m.AverageEnergy)
	if m.FramesRendered > 0 {
		avg := m.TotalDuration / time.Duration(m.FramesRendered)
		fmt.Printf("Average Frame Time   : %s\n", avg)
	}
	fmt.Printf("Last Frame Time      : %s\n", m.LastFrameDuration)
}
