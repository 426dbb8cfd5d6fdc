// Package pathtracer is the frame coordinator: it owns the scene's
// instance array, drives the megakernel or wavefront integrator over the
// frame's pixels, and resolves the accumulated radiance into a displayable
// framebuffer. Subpackages rng, wavefront, and trace hold pieces of the
// implementation that have a clean standalone API of their own.
package pathtracer

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wavecore/pathtracer/material"
)

// RenderSettings configures one render: frame dimensions, sampling budget,
// and integrator selection. Loaded from YAML with strict field checking,
// exactly as the teacher's policy-bundle config loader does.
type RenderSettings struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	SamplesPerPixel int   `yaml:"samples_per_pixel"`
	Seed            int64 `yaml:"seed"`

	MaxBounces              int `yaml:"max_bounces"`
	RussianRouletteMinDepth int `yaml:"russian_roulette_min_depth"`

	Wavefront bool   `yaml:"wavefront"`
	ViewMode  string `yaml:"view_mode"`

	// DiffuseSampling selects the hemisphere strategy for the purely
	// diffuse lobe: "cosine" (default, importance-sampled, cancels
	// directly to albedo) or "uniform" (flat pdf, an explicit
	// 2*cos(theta) throughput weight).
	DiffuseSampling string `yaml:"diffuse_sampling"`

	WorkerCount int    `yaml:"worker_count"`
	Backend     string `yaml:"backend"`
}

// DiffuseSamplingMode parses DiffuseSampling; call only after Validate has
// confirmed it names a known mode.
func (s RenderSettings) DiffuseSamplingMode() material.DiffuseSamplingMode {
	mode, _ := material.ParseDiffuseSamplingMode(s.DiffuseSampling)
	return mode
}

// DefaultRenderSettings matches the CLI's own flag defaults for width,
// height, samples per pixel and backend (spec §6): 1920x1080 and the
// "software" backend, with no debug view mode. Its Seed is 0, while the
// --seed flag defaults to 1.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Width:                   1920,
		Height:                  1080,
		SamplesPerPixel:         16,
		MaxBounces:              8,
		RussianRouletteMinDepth: 3,
		ViewMode:                "none",
		DiffuseSampling:         "cosine",
		WorkerCount:             8,
		Backend:                 "software",
	}
}

// PostFXSettings configures the post-process pass applied once per frame
// after accumulation: exposure, contrast/brightness/saturation grading,
// Reinhard-white tonemapping, and sRGB encoding.
type PostFXSettings struct {
	ExposureStops float32 `yaml:"exposure_stops"`
	Contrast      float32 `yaml:"contrast"`
	Brightness    float32 `yaml:"brightness"`
	Saturation    float32 `yaml:"saturation"`
	WhitePoint    float32 `yaml:"white_point"`
}

// DefaultPostFXSettings is the neutral (no-op) grade.
func DefaultPostFXSettings() PostFXSettings {
	return PostFXSettings{
		ExposureStops: 0,
		Contrast:      1,
		Brightness:    0,
		Saturation:    1,
		WhitePoint:    4,
	}
}

// LoadRenderSettings reads and strictly parses a YAML render config,
// starting from DefaultRenderSettings so a partial file only overrides
// the fields it names.
func LoadRenderSettings(path string) (*RenderSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading render settings: %w", err)
	}

	settings := DefaultRenderSettings()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil {
		return nil, fmt.Errorf("parsing render settings: %w", err)
	}
	return &settings, nil
}

// Validate checks the settings invariants the renderer relies on.
func (s RenderSettings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("render settings: width and height must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.SamplesPerPixel <= 0 {
		return fmt.Errorf("render settings: samples_per_pixel must be positive, got %d", s.SamplesPerPixel)
	}
	if s.MaxBounces < 0 {
		return fmt.Errorf("render settings: max_bounces must be non-negative, got %d", s.MaxBounces)
	}
	if s.WorkerCount <= 0 {
		return fmt.Errorf("render settings: worker_count must be positive, got %d", s.WorkerCount)
	}
	if _, err := material.ParseDiffuseSamplingMode(s.DiffuseSampling); err != nil {
		return fmt.Errorf("render settings: %w", err)
	}
	return nil
}
