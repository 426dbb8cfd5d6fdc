// cmd/root.go
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/camera"
	"github.com/wavecore/pathtracer/material"
	"github.com/wavecore/pathtracer/pathtracer"
	"github.com/wavecore/pathtracer/raytrace"
	"github.com/wavecore/pathtracer/texture"

	_ "github.com/wavecore/pathtracer/backend/hardware"
	_ "github.com/wavecore/pathtracer/backend/software"
)

var (
	renderWidth  int
	renderHeight int
	samplesPerPixel int
	seed         int64
	wavefront    bool
	logLevel     string
	backendName  string
)

var rootCmd = &cobra.Command{
	Use:   "pathtracer",
	Short: "Wavefront/megakernel path tracer core",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render frames until closed or the sample budget is spent",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		logrus.Infof("starting pathtracer: %dx%d, seed=%d, wavefront=%v, backend=%s",
			renderWidth, renderHeight, seed, wavefront, backendName)

		if err := run(); err != nil {
			logrus.Fatalf("render failed: %v", err)
		}
		logrus.Info("render complete")
	},
}

// run builds a minimal self-contained demo scene (a single diffuse quad
// under a constant-radiance sky, spec §8 scenario 1's "plane miss" setup)
// and drives the frame lifecycle spec §6 names: init → begin_scene →
// (submit_instance, render)* → end_scene → exit. Scene authoring and asset
// loading are out of scope (spec §1's Non-goals), so the demo scene is
// built directly against geom/material rather than parsed from a file.
func run() error {
	settings := pathtracer.DefaultRenderSettings()
	settings.Width = renderWidth
	settings.Height = renderHeight
	settings.Seed = seed
	settings.Wavefront = wavefront
	settings.Backend = backendName
	if samplesPerPixel > 0 {
		settings.SamplesPerPixel = samplesPerPixel
	}

	renderer, err := pathtracer.Init(pathtracer.Params{
		RenderSettings: settings,
		PostFX:         pathtracer.DefaultPostFXSettings(),
		Logger:         logrus.StandardLogger(),
	})
	if err != nil {
		return err
	}
	defer renderer.Exit()

	quadMesh, err := renderer.GeomRegistry().CreateMesh(
		[]raytrace.Vertex{
			{Position: mgl32.Vec3{-5, 0, -5}, Normal: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{5, 0, -5}, Normal: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{5, 0, 5}, Normal: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{-5, 0, 5}, Normal: mgl32.Vec3{0, 1, 0}},
		},
		[]uint32{0, 1, 2, 0, 2, 3},
		[]uint32{0, 0},
		"demo_plane",
		bvh.DefaultBuildOptions(),
	)
	if err != nil {
		return err
	}

	if err := renderer.SetMaterials([]material.Material{
		material.MakeDiffuse("red", [3]float32{1, 0, 0}),
	}); err != nil {
		return err
	}
	renderer.SetEnvironment(texture.NewConstantEnvironment(mgl32.Vec3{1, 1, 1}))

	cam := camera.New(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, -1}, mgl32.Vec3{0, 1, 0}, 60)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		renderer.RequestClose()
	}()

	runUntilClosed := samplesPerPixel == 0
	for {
		renderer.BeginScene(cam)
		if err := renderer.SubmitInstance(mgl32.Ident4(), quadMesh, 0); err != nil {
			return err
		}

		if _, err := renderer.Render(ctx); err != nil {
			return err
		}
		renderer.EndScene()

		if !runUntilClosed || renderer.ShouldClose() {
			break
		}
	}

	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().IntVar(&renderWidth, "width", 1920, "Render width in pixels")
	runCmd.Flags().IntVar(&renderHeight, "height", 1080, "Render height in pixels")
	runCmd.Flags().IntVar(&samplesPerPixel, "spp", 16, "Samples per pixel per frame; 0 runs until closed (Ctrl-C)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master RNG seed")
	runCmd.Flags().BoolVar(&wavefront, "wavefront", false, "Use the staged wavefront integrator instead of the megakernel")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&backendName, "backend", "software", "Traversal backend (software, hardware)")

	rootCmd.AddCommand(runCmd)
}
