// Package rng provides the deterministic, isolated per-stream random
// number generation the integrator needs to guarantee that two renders
// with the same seed and scene produce bit-identical images regardless of
// worker goroutine scheduling.
package rng

import (
	"hash/fnv"
	"math/rand"
)

// FrameKey uniquely identifies a reproducible frame. Two frames with the
// same FrameKey and identical scene/settings MUST produce bit-for-bit
// identical accumulated radiance.
type FrameKey int64

// NewFrameKey derives a FrameKey from the render's master seed and the
// frame index, so successive frames of the same render are independently
// reproducible rather than sharing one stream across the whole sequence.
func NewFrameKey(masterSeed int64, frameIndex uint64) FrameKey {
	return FrameKey(masterSeed ^ int64(frameIndex*0x9E3779B97F4A7C15))
}

// PartitionedRNG provides deterministic, isolated RNG instances per
// pixel/bounce stream, derived as frameKey XOR fnv1a64(streamName).
//
// Thread-safety: NOT thread-safe. Each worker goroutine must own its own
// PartitionedRNG (one per tile/pixel range), never share one across
// goroutines.
type PartitionedRNG struct {
	key     FrameKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG scoped to one frame.
func NewPartitionedRNG(key FrameKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns a deterministically-seeded RNG for the named stream
// (conventionally "px_<x>_<y>" for the megakernel, or "bounce_<n>" for the
// wavefront generate stage). The same name always returns the same cached
// *rand.Rand. Never returns nil.
//
// Not safe to call concurrently for different names on the same
// PartitionedRNG (the backing map is unsynchronized) — a worker pool that
// wants one stream per job should call DeriveStream directly instead,
// since it is a pure function with no shared state to race on.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := DeriveStream(p.key, name)
	p.streams[name] = r
	return r
}

// DeriveStream deterministically derives a fresh *rand.Rand for key and
// name with no shared state, so concurrent callers deriving different
// streams never race (unlike PartitionedRNG.ForStream, which caches into a
// shared map). pathtracer.Renderer's pixel/sample dispatch uses this
// directly since each dispatched job needs its own stream and jobs run
// concurrently across worker goroutines.
func DeriveStream(key FrameKey, name string) *rand.Rand {
	seed := int64(key) ^ fnv1a64(name)
	return rand.New(rand.NewSource(seed))
}

// Key returns the FrameKey this PartitionedRNG was derived from.
func (p *PartitionedRNG) Key() FrameKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
