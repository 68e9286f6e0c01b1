package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/polaris-viewer/asset/scene"
	"github.com/achilleasa/polaris-viewer/camera"
	"github.com/achilleasa/polaris-viewer/renderer"
	"github.com/achilleasa/polaris-viewer/tracer/cpu"
	"github.com/urfave/cli"
)

// Render a still frame using the cpu tracer.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts := rendererOptions(ctx)
	if opts.MaxSamples == 0 {
		return errors.New("spp must be greater than zero")
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	runCtx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelFn()

	sc, err := loadScene(runCtx, ctx.Args().First(), compilerOptions(ctx))
	if err != nil {
		return err
	}
	sc, err = withEnvironment(sc, ctx.String("env-color"), ctx.Float64("env-intensity"))
	if err != nil {
		return err
	}

	sampleFn := cpu.DiffuseShader
	if ctx.Bool("normals") {
		sampleFn = cpu.NormalShader
	}
	tr := cpu.NewTracer("cpu", sampleFn)

	loop, err := renderer.NewLoop(tr, camera.FromScene(sc.Camera), opts)
	if err != nil {
		return err
	}
	defer loop.Close()
	loop.SetScene(sc)

	err = renderFrames(runCtx, loop)
	if err != nil {
		return err
	}
	logger.Noticef("render statistics\n%s", loop.Stats().Table())

	return writeFrame(tr, ctx.String("out"))
}

// Render frames until the loop reaches its sample cap.
func renderFrames(ctx context.Context, loop *renderer.Loop) error {
	start := time.Now()
	for {
		if ctx.Err() != nil {
			return renderer.ErrInterrupted
		}

		rendered, err := loop.Frame()
		if err != nil {
			return err
		}
		if !rendered {
			break
		}
		logger.Debugf("accumulated sample %d", loop.SampleCount())
	}
	logger.Noticef("rendered %d samples in %d ms", loop.SampleCount(), time.Since(start).Nanoseconds()/1e6)
	return nil
}

func writeFrame(tr *cpu.Tracer, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	err = png.Encode(f, tr.Frame())
	if err != nil {
		return fmt.Errorf("could not encode frame: %w", err)
	}

	logger.Noticef("wrote frame to %s", filename)
	return nil
}

// Render an interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	source := ctx.Args().First()
	compilerOpts := compilerOptions(ctx)
	envColor, envIntensity := ctx.String("env-color"), ctx.Float64("env-intensity")
	load := func(loadCtx context.Context) (*scene.Scene, error) {
		sc, err := loadScene(loadCtx, source, compilerOpts)
		if err != nil {
			return nil, err
		}
		return withEnvironment(sc, envColor, envIntensity)
	}

	r, err := renderer.NewInteractive(context.Background(), load, rendererOptions(ctx))
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

func rendererOptions(ctx *cli.Context) renderer.Options {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.MaxDepth = uint32(ctx.Int("max-depth"))
	opts.PreviewDepth = uint32(ctx.Int("preview-depth"))
	opts.MaxSamples = uint32(ctx.Int("spp"))
	opts.TraceShader = ctx.String("trace-shader")
	opts.VSync = !ctx.Bool("no-vsync")
	return opts
}
