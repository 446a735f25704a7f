package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	"github.com/knights-analytics/modelprobe"
	"github.com/knights-analytics/modelprobe/backends"
	"github.com/knights-analytics/modelprobe/options"
	"github.com/knights-analytics/modelprobe/report"
	"github.com/knights-analytics/modelprobe/util/checks"
	"github.com/knights-analytics/modelprobe/util/fileutil"
)

// defaultModelPaths are tried in order when no --model flag is given.
var defaultModelPaths = []string{
	"app/src/main/assets/mobilebert_phase1_int8.tflite",
	"../AndroidStudioProjects/Koshpal/app/src/main/assets/mobilebert_phase1_int8.tflite",
	"assets/mobilebert_phase1_int8.tflite",
}

type config struct {
	backend           string
	sharedLibraryPath string
	format            string
	modelPaths        []string
	threads           int
	glyphs            bool
}

var modelPaths = cli.NewStringSlice()
var backend string
var sharedLibraryPath string
var threads int
var format string
var logLevel string

var flags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:        "model",
		Usage:       "Candidate path of the model, repeat to try several in order. The default .tflite candidates need a build with -tags TFLITE",
		Aliases:     []string{"p"},
		Destination: modelPaths,
		Value:       cli.NewStringSlice(defaultModelPaths...),
	},
	&cli.StringFlag{
		Name:        "backend",
		Usage:       "Backend running the model: TFLITE, ORT or GO. Inferred from the file extension if omitted",
		Aliases:     []string{"b"},
		Destination: &backend,
	},
	&cli.StringFlag{
		Name:        "onnxruntimeSharedLibrary",
		Usage:       "Path to onnxruntime.so, ORT backend only",
		Aliases:     []string{"s"},
		Destination: &sharedLibraryPath,
	},
	&cli.IntFlag{
		Name:        "threads",
		Usage:       "Number of threads the backend may use, 0 keeps the backend default",
		Aliases:     []string{"t"},
		Destination: &threads,
	},
	&cli.StringFlag{
		Name:        "format",
		Usage:       "Report format: text or json",
		Aliases:     []string{"f"},
		Destination: &format,
		Value:       "text",
	},
	&cli.StringFlag{
		Name:        "logLevel",
		Usage:       "Level of the diagnostics written to stderr",
		Destination: &logLevel,
		Value:       "info",
	},
}

func setupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput: isatty.IsTerminal(os.Stderr.Fd()),
			Writer:      os.Stderr,
		},
	}
}

func sessionOptions(cfg config, backend string) []options.WithOption {
	var opts []options.WithOption
	if cfg.sharedLibraryPath != "" && backend == "ORT" {
		opts = append(opts, options.WithOnnxLibraryPath(cfg.sharedLibraryPath))
	}
	if cfg.threads > 0 {
		opts = append(opts, options.WithNumThreads(cfg.threads))
	}
	return opts
}

// run inspects the first existing model of cfg.modelPaths and returns the process exit code.
func run(ctx context.Context, cfg config, stdout io.Writer) int {
	text := report.Text{Glyphs: cfg.glyphs}

	path, err := fileutil.ResolveFirst(ctx, cfg.modelPaths)
	if err != nil {
		var notFound *fileutil.NotFoundError
		if errors.As(err, &notFound) {
			if notFound.Err != nil {
				log.Warn().Err(notFound.Err).Msg("some candidate paths could not be checked")
			}
			if cfg.format == "json" {
				err = report.WriteJSONFailure(stdout, report.Failure{Error: "model not found", Attempted: notFound.Attempted})
			} else {
				err = text.WriteNotFound(stdout, notFound.Attempted)
			}
		}
		if err != nil {
			log.Error().Err(err).Msg("writing report")
		}
		return 1
	}

	modelBackend := cfg.backend
	if modelBackend == "" {
		modelBackend = backends.InferBackend(path)
	}
	log.Debug().Str("path", path).Str("backend", modelBackend).Msg("model resolved")

	size, err := fileutil.FileSize(ctx, path)
	if err != nil {
		return loadFailed(stdout, cfg, report.NewHeader(path, modelBackend, 0), checks.Wrap(err))
	}
	r := report.NewHeader(path, modelBackend, size)
	if cfg.format == "text" {
		if err = text.WriteHeader(stdout, r); err != nil {
			log.Error().Err(err).Msg("writing report")
			return 1
		}
	}

	session, err := modelprobe.NewSession(modelBackend, sessionOptions(cfg, modelBackend)...)
	if err != nil {
		return loadFailed(stdout, cfg, r, checks.Wrap(err))
	}
	defer func(session *modelprobe.Session) {
		if destroyErr := session.Destroy(); destroyErr != nil {
			log.Error().Err(destroyErr).Msg("destroying session")
		}
	}(session)

	model, err := session.LoadModel(ctx, path)
	if err != nil {
		return loadFailed(stdout, cfg, r, err)
	}

	r.Describe(model)
	if cfg.format == "text" {
		if err = text.WriteDetails(stdout, r); err != nil {
			log.Error().Err(err).Msg("writing report")
			return 1
		}
	}

	result, smokeErr := session.SmokeTest(model)
	r.SetSmokeTest(result.Inputs, result.Outputs, result.Duration, smokeErr)
	if smokeErr != nil {
		checks.LogError(smokeErr, "inference test failed")
	}

	if cfg.format == "json" {
		err = report.WriteJSON(stdout, r)
	} else {
		err = errors.Join(text.WriteSmokeTest(stdout, r), text.WriteSummary(stdout, r))
	}
	if err != nil {
		log.Error().Err(err).Msg("writing report")
		return 1
	}
	return 0
}

func loadFailed(stdout io.Writer, cfg config, r *report.Report, err error) int {
	var writeErr error
	if cfg.format == "json" {
		writeErr = report.WriteJSONFailure(stdout, report.Failure{
			Error:     err.Error(),
			Path:      r.Path,
			Backend:   r.Backend,
			SizeBytes: r.SizeBytes,
		})
	} else {
		writeErr = report.Text{Glyphs: cfg.glyphs}.WriteLoadError(stdout, err)
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("writing report")
	}
	checks.LogError(err, "error inspecting model")
	return 1
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:  "modelprobe",
		Usage: "Inspect the inputs, outputs and quantization of an inference model and run it once on zero inputs",
		Description: `modelprobe tries each --model path in order and inspects the first one that exists.
				Without --model it tries the bundled MobileBERT asset locations, which need a build with -tags TFLITE.
				--backend: TFLITE for .tflite files and ORT for .onnx files unless set. GO runs ONNX models without cgo.
				`,
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			setupLogger(logLevel)
			if format != "text" && format != "json" {
				return cli.Exit(fmt.Sprintf("unknown format %q, use text or json", format), 1)
			}
			cfg := config{
				modelPaths:        modelPaths.Value(),
				backend:           backend,
				sharedLibraryPath: sharedLibraryPath,
				threads:           threads,
				format:            format,
				glyphs:            isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
			}
			if code := run(ctx.Context, cfg, stdout); code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("modelprobe failed")
		os.Exit(1)
	}
}
