package pathtracer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/wavecore/pathtracer/backend"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/geom"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer/rng"
	"github.com/wavecore/pathtracer/texture"
	"github.com/wavecore/pathtracer/tlas"
)

// ErrTooManyInstances is returned by SubmitInstance once the per-frame
// instance array reaches tlas.MaxInstances (spec §4.6's capacity cap);
// spec §7 classifies this as CapacityExceeded — the caller must break its
// submission into smaller batches, the frame itself is not aborted.
var ErrTooManyInstances = errors.New("pathtracer: instance capacity exceeded")

// ErrInvalidMaterial wraps a material.Material.Validate failure surfaced by
// SetMaterials; spec §7 classifies this as InvalidInput.
var ErrInvalidMaterial = errors.New("pathtracer: invalid material")

// Params configures a Renderer at construction, the "init(params)" contract
// of design note §9 and spec §6's frame-lifecycle section.
type Params struct {
	RenderSettings RenderSettings
	PostFX         PostFXSettings
	Logger         *logrus.Logger
}

// pendingInstance is one SubmitInstance call, resolved into a tlas.Instance
// once BeginScene looks up its mesh.
type pendingInstance struct {
	localToWorld mgl32.Mat4
	mesh         geom.Handle
	materialIdx  uint32
}

// Renderer is the Frame Coordinator (spec §4.6): the explicit record that
// replaces any process-wide global renderer state (design note §9). It
// owns the instance array, RNG, accumulator, thread pool, render settings,
// and selected traversal backend.
type Renderer struct {
	settings RenderSettings
	postFX   PostFXSettings
	logger   *logrus.Logger

	geomRegistry *geom.Registry
	materials    []material.Material
	environment  *texture.Environment
	camera       camera.Camera

	pool        *ThreadPool
	integrator  Integrator
	accumulator *Accumulator
	frameIndex  uint64
	closeFlag   bool

	pending []pendingInstance
	scene   *tlas.TLAS
	tracer  backend.Tracer

	metrics Metrics
}

// Init builds a Renderer from params, matching spec §6's
// `init(params) → run-loop → exit` frame lifecycle. A Fatal-kind failure
// (spec §7) — here, an unknown backend name, since nothing downstream can
// recover from that — is returned rather than panicking so cmd/root.go can
// logrus.Fatal with a clean non-zero exit.
func Init(params Params) (*Renderer, error) {
	settings := params.RenderSettings
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("pathtracer: init: %w", err)
	}

	logger := params.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	tracer, err := backend.New(settings.Backend, &tlas.TLAS{})
	if err != nil {
		return nil, fmt.Errorf("pathtracer: init: %w", err)
	}

	r := &Renderer{
		settings:     settings,
		postFX:       params.PostFX,
		logger:       logger,
		geomRegistry: geom.NewRegistry(),
		environment:  texture.NewConstantEnvironment(mgl32.Vec3{1, 1, 1}),
		pool:         NewThreadPool(settings.WorkerCount),
		accumulator:  NewAccumulator(settings.Width, settings.Height),
		tracer:       tracer,
	}
	if settings.Wavefront {
		r.integrator = newWavefrontIntegrator()
	} else {
		r.integrator = Megakernel{}
	}

	logger.Infof("pathtracer: initialized %dx%d, backend=%s, wavefront=%v, workers=%d",
		settings.Width, settings.Height, settings.Backend, settings.Wavefront, settings.WorkerCount)
	return r, nil
}

// Exit tears down the Renderer, printing final metrics the same way the
// teacher's simulation run prints Metrics.Print() at completion.
func (r *Renderer) Exit() {
	r.metrics.Print()
}

// GeomRegistry exposes the mesh registry so the caller can CreateMesh
// before submitting instances against the returned handles.
func (r *Renderer) GeomRegistry() *geom.Registry {
	return r.geomRegistry
}

// SetMaterials installs the scene's flat material table; instances
// reference into it by index. Each material is validated (specular +
// refractivity budget, IOR) before installation; spec §7's InvalidInput
// kind is retained as a release-build assertion rather than only a test.
func (r *Renderer) SetMaterials(materials []material.Material) error {
	for i, m := range materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: material %d: %v", ErrInvalidMaterial, i, err)
		}
	}
	r.materials = materials
	return nil
}

// SetEnvironment installs the equirectangular HDR sky sampled on ray miss.
func (r *Renderer) SetEnvironment(env *texture.Environment) {
	if env == nil {
		env = texture.NewConstantEnvironment(mgl32.Vec3{})
	}
	r.environment = env
	r.ResetAccumulation()
}

// BeginScene resets the per-frame instance array and installs the camera
// for this frame (spec §4.6, §6's `begin_scene(camera, env_map)`). A camera
// that differs from the previous frame's resets the accumulator.
func (r *Renderer) BeginScene(cam camera.Camera) {
	if cam != r.camera {
		r.ResetAccumulation()
	}
	r.camera = cam
	r.pending = r.pending[:0]
}

// SubmitInstance appends a mesh instance to the current frame's instance
// array. Capped at tlas.MaxInstances; exceeding it is a CapacityExceeded
// error (spec §7) that drops the instance but does not abort the frame.
func (r *Renderer) SubmitInstance(localToWorld mgl32.Mat4, mesh geom.Handle, materialIdx uint32) error {
	if len(r.pending) >= tlas.MaxInstances {
		return ErrTooManyInstances
	}
	r.pending = append(r.pending, pendingInstance{localToWorld: localToWorld, mesh: mesh, materialIdx: materialIdx})
	return nil
}

// SwitchBackend reselects the traversal capability by name (design note
// §9's "software vs hardware raytracing toggle"), invalidating the current
// scene so the next Render rebuilds the TLAS against the new backend.
func (r *Renderer) SwitchBackend(name string) error {
	tracer, err := backend.New(name, &tlas.TLAS{})
	if err != nil {
		return fmt.Errorf("pathtracer: switch backend: %w", err)
	}
	r.settings.Backend = name
	r.tracer = tracer
	r.scene = nil
	r.ResetAccumulation()
	return nil
}

// ResetAccumulation zeroes the accumulator, used whenever the camera view
// or a render setting changes (spec §4.5.3).
func (r *Renderer) ResetAccumulation() {
	r.accumulator = NewAccumulator(r.settings.Width, r.settings.Height)
}

// ShouldClose reports whether the caller's run loop should stop, the
// should_close flag spec §5 names as the only cancellation point (a frame
// itself is never interrupted once started).
func (r *Renderer) ShouldClose() bool {
	return r.closeFlag
}

// RequestClose sets the should_close flag checked between frames.
func (r *Renderer) RequestClose() {
	r.closeFlag = true
}

// buildScene resolves pending instances into a tlas.TLAS, looking up each
// mesh handle and constructing its tlas.Instance (world transforms,
// conservative world AABB). A stale mesh handle is a ResourceNotFound
// condition (spec §7): the instance is skipped and logged rather than
// failing the whole frame.
func (r *Renderer) buildScene() (*tlas.TLAS, error) {
	instances := make([]tlas.Instance, 0, len(r.pending))
	materialIdx := make([]uint32, 0, len(r.pending))
	for _, p := range r.pending {
		mesh, ok := r.geomRegistry.Lookup(p.mesh)
		if !ok {
			r.logger.Warnf("pathtracer: skipping instance with stale mesh handle %+v", p.mesh)
			continue
		}
		instances = append(instances, tlas.NewInstance(p.localToWorld, mesh.BLAS))
		materialIdx = append(materialIdx, p.materialIdx)
	}

	if len(instances) == 0 {
		return &tlas.TLAS{}, nil
	}
	built, err := tlas.Build(instances)
	if err != nil {
		return nil, fmt.Errorf("pathtracer: build scene: %w", err)
	}
	return built, nil
}

// Render drives one frame: build TLAS, dispatch the selected integrator
// form over the thread pool, merge contributions into the accumulator, and
// resolve the post-processed framebuffer (spec §4.6's per-frame flow).
func (r *Renderer) Render(ctx context.Context) ([]uint32, error) {
	start := time.Now()

	scene, err := r.buildScene()
	if err != nil {
		return nil, err
	}
	r.scene = scene

	tracer, err := backend.New(r.settings.Backend, scene)
	if err != nil {
		return nil, fmt.Errorf("pathtracer: render: %w", err)
	}
	r.tracer = tracer

	viewMode, err := ParseRenderViewMode(r.settings.ViewMode)
	if err != nil {
		return nil, fmt.Errorf("pathtracer: render: %w", err)
	}

	sceneCtx := SceneContext{
		Tracer:      tracer,
		Scene:       scene,
		Materials:   r.materials,
		Environment: r.environment,
	}

	frameKey := rng.NewFrameKey(r.settings.Seed, r.frameIndex)
	frameCtx := FrameContext{
		Scene:       sceneCtx,
		Camera:      r.camera,
		Settings:    r.settings,
		ViewMode:    viewMode,
		FrameKey:    frameKey,
		Accumulator: r.accumulator,
		Pool:        r.pool,
	}

	if err := r.integrator.Render(ctx, frameCtx); err != nil {
		return nil, fmt.Errorf("pathtracer: render: %w", err)
	}

	r.frameIndex++
	r.metrics.FramesRendered++
	r.metrics.LastFrameDuration = time.Since(start)
	r.metrics.TotalDuration += r.metrics.LastFrameDuration
	primaryRays := int64(r.settings.Width * r.settings.Height * r.settings.SamplesPerPixel)
	r.metrics.PrimaryRays += primaryRays
	r.metrics.TotalRays += primaryRays // bounce/shadow rays are not separately counted by the integrator
	r.metrics.AverageEnergy = r.accumulator.AverageLuminance()

	return r.accumulator.Resolve(r.postFX), nil
}

// EndScene clears the per-frame instance set, readying the Renderer for
// the next BeginScene (spec §4.6's frame-end: "swap queues; increment
// accumulator sample count if accumulation is enabled" — sample-count
// bookkeeping is folded into Accumulator.MergeOrdered instead of a
// separate end-of-frame step).
func (r *Renderer) EndScene() {
	r.pending = r.pending[:0]
}
