package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/df07/glcompute-raytracer/pkg/app"
	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/renderer"
	"github.com/df07/glcompute-raytracer/pkg/scene"
	"github.com/df07/glcompute-raytracer/web/server"
)

// GLFW and OpenGL calls must stay on the main thread
func init() {
	runtime.LockOSThread()
}

// Run modes
const (
	ModeWindow   = "window"
	ModeHeadless = "headless"
	ModeServe    = "serve"
)

// options holds the command line; only flags the user set override the config file
type options struct {
	configPath  string
	mode        string
	scene       string
	width       int
	height      int
	samples     int
	depth       int
	logLevel    string
	output      string
	port        int
	printConfig bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("glcompute-raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "TOML config file")
	fs.StringVar(&opts.mode, "mode", ModeWindow, "Run mode: 'window', 'headless' or 'serve'")
	fs.StringVar(&opts.scene, "scene", "", "Scene name")
	fs.IntVar(&opts.width, "width", 0, "Window and image width")
	fs.IntVar(&opts.height, "height", 0, "Window and image height")
	fs.IntVar(&opts.samples, "samples", 0, "Samples per pixel per frame")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum ray bounces")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&opts.output, "output", "", "Directory for renders and screenshots")
	fs.IntVar(&opts.port, "port", 0, "Web preview port")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print the effective config as TOML and exit")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "GL Compute Raytracer")
		fmt.Fprintln(stderr, "Usage: glcompute-raytracer [options]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Available scenes:")
		for _, info := range scene.List() {
			fmt.Fprintf(stderr, "  %-12s %s\n", info.ID, info.Description)
		}
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Headless renders are saved to <output>/<scene>/render_<timestamp>.png")
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch opts.mode {
	case ModeWindow, ModeHeadless, ModeServe:
	default:
		return options{}, fmt.Errorf("unknown mode %q", opts.mode)
	}

	opts.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	if opts.set["scene"] {
		cfg.Scene = opts.scene
	}
	if opts.set["width"] {
		cfg.Window.Width = opts.width
	}
	if opts.set["height"] {
		cfg.Window.Height = opts.height
	}
	if opts.set["samples"] {
		cfg.Render.SamplesPerFrame = opts.samples
	}
	if opts.set["depth"] {
		cfg.Render.MaxDepth = opts.depth
	}
	if opts.set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
	if opts.set["output"] {
		cfg.OutputDir = opts.output
	}
	if opts.set["port"] {
		cfg.Web.Port = opts.port
	}

	return cfg, cfg.Validate()
}

// exitCode maps a run error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, app.ErrGLFW):
		return 2
	default:
		return 1
	}
}

func runWindow(ctx context.Context, cfg config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}

// runHeadless renders the scene on the CPU and writes the final pass as PNG
func runHeadless(ctx context.Context, cfg config.Config, now time.Time) (string, error) {
	log := core.Logger()

	s, err := scene.FromConfig(cfg, cfg.AspectRatio())
	if err != nil {
		return "", err
	}

	width, height := cfg.Window.Width, cfg.Window.Height
	progressive := renderer.ConfigFromSettings(cfg.Progressive, s.GetSamplingConfig().SamplesPerPixel)
	raytracer := renderer.NewProgressiveRaytracer(s, width, height, progressive)

	start := time.Now()
	passChan, _, errChan := raytracer.RenderProgressive(ctx, renderer.RenderOptions{})

	var last *renderer.PassResult
	for result := range passChan {
		last = &result
	}
	if err := <-errChan; err != nil {
		return "", fmt.Errorf("render %s: %w", cfg.Scene, err)
	}
	if last == nil {
		return "", fmt.Errorf("render %s: no passes completed", cfg.Scene)
	}

	log.Info("render completed", "duration", time.Since(start).Round(time.Millisecond),
		"avg_samples", fmt.Sprintf("%.1f", last.Stats.AverageSamples),
		"min_samples", last.Stats.MinSamples, "max_samples", last.Stats.MaxSamplesUsed)

	path := app.OutputPath(cfg.OutputDir, cfg.Scene, "render", now)
	if err := app.SavePNG(last.Image, path); err != nil {
		return "", err
	}
	log.Info("render saved", "path", path)
	return path, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := loadConfig(opts)

	core.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: core.ParseLevel(cfg.LogLevel)})))
	log := core.Logger()
	if err != nil {
		log.Error("config rejected", "err", err)
		return 1
	}

	if opts.printConfig {
		if err := cfg.Encode(stdout); err != nil {
			log.Error("config encoding failed", "err", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting", "mode", opts.mode, "scene", cfg.Scene, "width", cfg.Window.Width, "height", cfg.Window.Height)

	switch opts.mode {
	case ModeHeadless:
		_, err = runHeadless(ctx, cfg, time.Now())
	case ModeServe:
		err = server.NewServer(cfg).Start(ctx)
	default:
		err = runWindow(ctx, cfg)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("exiting", "mode", opts.mode, "err", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
