package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/achilleasa/polaris-viewer/cmd"
	"github.com/urfave/cli"
)

func init() {
	// glfw and opengl calls must be issued from the main thread
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:   "width",
			Value:  800,
			Usage:  "frame width",
			EnvVar: "POLARIS_WIDTH",
		},
		cli.IntFlag{
			Name:   "height",
			Value:  600,
			Usage:  "frame height",
			EnvVar: "POLARIS_HEIGHT",
		},
		cli.IntFlag{
			Name:   "max-depth",
			Value:  8,
			Usage:  "max path depth",
			EnvVar: "POLARIS_MAX_DEPTH",
		},
		cli.IntFlag{
			Name:   "preview-depth",
			Value:  2,
			Usage:  "path depth for the first sample after a camera or scene change",
			EnvVar: "POLARIS_PREVIEW_DEPTH",
		},
		cli.StringFlag{
			Name:   "env-color",
			Usage:  "override the scene background color (r,g,b)",
			EnvVar: "POLARIS_ENV_COLOR",
		},
		cli.Float64Flag{
			Name:   "env-intensity",
			Value:  -1,
			Usage:  "override the scene background intensity",
			EnvVar: "POLARIS_ENV_INTENSITY",
		},
	}

	app := cli.NewApp()
	app.Name = "polaris-viewer"
	app.Usage = "progressive path tracing scene viewer"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log levels as level[,module=level...] (debug, info, notice, warning, error)",
			EnvVar: "POLARIS_LOG_LEVEL",
		},
		cli.IntFlag{
			Name:   "max-texture-size",
			Value:  4096,
			Usage:  "max row length for packed scene buffers",
			EnvVar: "POLARIS_MAX_TEXTURE_SIZE",
		},
		cli.BoolFlag{
			Name:   "no-flip-textures",
			Usage:  "do not flip atlas textures vertically",
			EnvVar: "POLARIS_NO_FLIP_TEXTURES",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile preset scenes into a binary compressed format",
			Description: `
Generate a built-in scene, build a BVH tree to optimize ray intersection tests
and package scene elements in a GPU-friendly format.

The optimized scene data is then written to a zip archive which can be supplied
as an argument to the view, frame and info commands.`,
			ArgsUsage: "preset1 preset2 ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out-dir, o",
					Value: ".",
					Usage: "output folder for compiled scenes",
				},
			},
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print statistics for a compiled scene",
			ArgsUsage: "scene.zip|preset:name",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "presets",
			Usage:  "list built-in scenes",
			Action: cmd.ListPresets,
		},
		{
			Name:        "frame",
			Usage:       "render a single frame using the cpu tracer",
			Description: `Accumulate the requested number of samples and write the frame as a png image.`,
			ArgsUsage:   "scene.zip|preset:name",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:   "spp",
					Value:  16,
					Usage:  "samples per pixel",
					EnvVar: "POLARIS_SPP",
				},
				cli.BoolFlag{
					Name:  "normals",
					Usage: "render surface normals instead of shading",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, renderFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "view",
			Usage: "render an interactive view of the scene",
			Description: `
Controls:
  left drag / arrows   orbit
  scroll / w, s        zoom
  + / -                field of view
  [ / ]                focus distance
  , / .                defocus angle
  page up / page down  max path depth
  esc                  quit`,
			ArgsUsage: "scene.zip|preset:name",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:   "spp",
					Value:  0,
					Usage:  "stop accumulating after this many samples (0 = unlimited)",
					EnvVar: "POLARIS_SPP",
				},
				cli.StringFlag{
					Name:   "trace-shader",
					Usage:  "fragment shader implementing trace_sample (default: built-in diffuse tracer)",
					EnvVar: "POLARIS_TRACE_SHADER",
				},
				cli.BoolFlag{
					Name:   "no-vsync",
					Usage:  "disable vertical sync",
					EnvVar: "POLARIS_NO_VSYNC",
				},
			}, renderFlags...),
			Action: cmd.RenderInteractive,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
