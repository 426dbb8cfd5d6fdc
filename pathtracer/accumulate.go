package pathtracer

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"

	"github.com/wavecore/pathtracer/raytrace"
)

// varianceWindow bounds how many past per-frame pixel means
// Accumulator.Variance looks at, so the diagnostic cost stays flat instead
// of growing with the number of frames rendered.
const varianceWindow = 32

// sampleContribution is one sample's radiance estimate for one pixel,
// produced by whichever worker goroutine happened to finish that pixel's
// job group. Workers finish in whatever order the scheduler picks, so
// contributions arrive out of (pixel, sample) order; the accumulator
// re-sorts them by fingerprint before summing (see fingerprintHeap) so the
// final image is bit-identical regardless of which worker finished first —
// floating-point addition is not associative, so summing in scheduling
// order would make the result depend on goroutine timing.
type sampleContribution struct {
	pixelIndex  int
	sampleIndex int
	radiance    mgl32.Vec3
}

// fingerprintHeap orders sampleContribution values by (pixelIndex,
// sampleIndex), the deterministic ordering key ("fingerprint") that makes
// accumulation reproducible. Modeled directly on the teacher's
// container/heap-based EventHeap, whose multi-field Less implements the
// same "sort by composite deterministic key, not arrival order" idea for
// discrete-event scheduling.
type fingerprintHeap []sampleContribution

func (h fingerprintHeap) Len() int { return len(h) }

func (h fingerprintHeap) Less(i, j int) bool {
	if h[i].pixelIndex != h[j].pixelIndex {
		return h[i].pixelIndex < h[j].pixelIndex
	}
	return h[i].sampleIndex < h[j].sampleIndex
}

func (h fingerprintHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *fingerprintHeap) Push(x any) {
	*h = append(*h, x.(sampleContribution))
}

func (h *fingerprintHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Accumulator owns the per-pixel running radiance sum and sample count,
// carried across frames until it is replaced by a reset, and resolves them
// into a displayable framebuffer.
type Accumulator struct {
	width, height int
	sums          []mgl32.Vec3
	sampleCounts  []int

	// luminanceHistory[p] holds up to varianceWindow past per-frame mean
	// luminance values for pixel p, oldest first; Variance reads it, and
	// MergeSamples appends the new per-frame mean after each merge.
	luminanceHistory [][]float32
}

// NewAccumulator returns a zeroed accumulator for a width x height frame.
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:            width,
		height:           height,
		sums:             make([]mgl32.Vec3, width*height),
		sampleCounts:     make([]int, width*height),
		luminanceHistory: make([][]float32, width*height),
	}
}

// MergeOrdered adds every contribution into the running sums, processing
// them in fingerprint order (pixel, then sample) rather than slice order,
// so the result does not depend on which worker produced which entry
// first.
func (a *Accumulator) MergeOrdered(contributions []sampleContribution) {
	h := make(fingerprintHeap, len(contributions))
	copy(h, contributions)
	heap.Init(&h)

	touched := make(map[int]struct{}, len(contributions))
	for h.Len() > 0 {
		c := heap.Pop(&h).(sampleContribution)
		a.sums[c.pixelIndex] = a.sums[c.pixelIndex].Add(c.radiance)
		a.sampleCounts[c.pixelIndex]++
		touched[c.pixelIndex] = struct{}{}
	}

	for pixelIndex := range touched {
		mean := a.sums[pixelIndex].Mul(1 / float32(a.sampleCounts[pixelIndex]))
		lum := mean[0]*0.2126 + mean[1]*0.7152 + mean[2]*0.0722
		hist := append(a.luminanceHistory[pixelIndex], lum)
		if len(hist) > varianceWindow {
			hist = hist[len(hist)-varianceWindow:]
		}
		a.luminanceHistory[pixelIndex] = hist
	}
}

// Variance reports the sample variance of pixel (x, y)'s luminance across
// its recent per-frame means (gonum's stat.Variance over the windowed
// history), backing the testable property that variance decreases
// monotonically in expectation across consecutive static-camera frames.
// Returns 0 until at least two frames have touched the pixel.
func (a *Accumulator) Variance(x, y int) float64 {
	hist := a.luminanceHistory[a.PixelIndex(x, y)]
	if len(hist) < 2 {
		return 0
	}
	data := make([]float64, len(hist))
	for i, v := range hist {
		data[i] = float64(v)
	}
	return stat.Variance(data, nil)
}

// Resolve averages each pixel's accumulated radiance, applies the
// PostFXSettings grade and Reinhard-white tonemap, encodes to sRGB, and
// packs to RGBA8. Pixels with zero samples (shouldn't happen in a
// completed render, but Resolve is also used by debug view modes that may
// leave gaps) resolve to opaque black.
func (a *Accumulator) Resolve(post PostFXSettings) []uint32 {
	out := make([]uint32, len(a.sums))
	for i, sum := range a.sums {
		n := a.sampleCounts[i]
		var color mgl32.Vec3
		if n > 0 {
			color = sum.Mul(1 / float32(n))
		}

		color = raytrace.ApplyExposure(color, post.ExposureStops)
		color = raytrace.ApplyContrast(color, post.Contrast)
		color = raytrace.ApplyBrightness(color, post.Brightness)
		color = raytrace.ApplySaturation(color, post.Saturation)
		color = raytrace.ReinhardWhiteTonemap(color, post.WhitePoint)
		color = raytrace.LinearToSRGB(color)

		out[i] = raytrace.PackRGBA8(color, 1)
	}
	return out
}

// PixelIndex converts (x, y) into the flat index Resolve/MergeOrdered use.
func (a *Accumulator) PixelIndex(x, y int) int {
	return y*a.width + x
}

// AverageLuminance reports the mean per-pixel luminance across every
// pixel with at least one sample, the avg_energy_accumulator diagnostic
// recovered from the original CPUPathtracer.cpp and surfaced as
// Metrics.AverageEnergy.
func (a *Accumulator) AverageLuminance() float32 {
	var total float32
	var count int
	for i, sum := range a.sums {
		n := a.sampleCounts[i]
		if n == 0 {
			continue
		}
		mean := sum.Mul(1 / float32(n))
		total += mean[0]*0.2126 + mean[1]*0.7152 + mean[2]*0.0722
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float32(count)
}
