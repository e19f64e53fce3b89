// Command svgrender rasterizes an SVG document to PNG from the command line,
// using the same options payload as the Terraform provider.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
	"github.com/ankek/terraform-provider-svgraster/internal/validation"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	optionsPath string
	outPath     string
	engine      string
	logLevel    string
	background  string
	dpi         float64
	zoom        float64
	width       uint32
	height      uint32
	cacheDir    string
	strictFonts bool
	listEngines bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cfg config

	flags := pflag.NewFlagSet("svgrender", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&cfg.optionsPath, "options", "c", "", "Options file (JSON, or HCL when the name ends in .hcl)")
	flags.StringVarP(&cfg.outPath, "out", "o", "", "Output PNG path, - for stdout (default: input name with .png)")
	flags.StringVarP(&cfg.engine, "engine", "e", renderer.DefaultEngine().Name(), "Rasterization engine: "+strings.Join(renderer.EngineNames(), "|"))
	flags.StringVar(&cfg.logLevel, "log-level", "warn", "Log level: trace|debug|info|warn|error|off")
	flags.StringVarP(&cfg.background, "background", "b", "", "Background colour, overrides the options file")
	flags.Float64Var(&cfg.dpi, "dpi", 0, "Resolution for absolute units, overrides the options file")
	flags.Float64VarP(&cfg.zoom, "zoom", "z", 0, "Scale factor")
	flags.Uint32VarP(&cfg.width, "width", "w", 0, "Output width in pixels")
	flags.Uint32VarP(&cfg.height, "height", "H", 0, "Output height in pixels")
	flags.StringVar(&cfg.cacheDir, "font-cache-dir", "", "Directory for the system font index cache")
	flags.BoolVar(&cfg.strictFonts, "strict-fonts", false, "Fail when a local font file or directory is missing")
	flags.BoolVar(&cfg.listEngines, "list-engines", false, "List available engines")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: svgrender [flags] [input.svg|-]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, the document is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if cfg.listEngines {
		for _, name := range renderer.EngineNames() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	level := hclog.LevelFromString(cfg.logLevel)
	if level == hclog.NoLevel {
		fmt.Fprintf(stderr, "invalid --log-level %q\n", cfg.logLevel)
		return 2
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "svgrender",
		Level:  level,
		Output: stderr,
	})

	if flags.NArg() > 1 {
		logger.Error("too many inputs", "args", flags.Args())
		return 2
	}
	input := flags.Arg(0)

	raw, err := loadOptions(cfg.optionsPath)
	if err != nil {
		logger.Error("failed to load options", "path", cfg.optionsPath, "error", err)
		return 1
	}
	raw, err = applyOverrides(raw, flags, cfg)
	if err != nil {
		logger.Error("invalid flags", "error", err)
		return 2
	}

	settings, err := options.Resolve(raw)
	if err != nil {
		logger.Error("invalid options", "error", err)
		return 1
	}
	if cfg.strictFonts {
		if err := validation.ValidateFontSources(settings.Font.FontFiles, settings.Font.FontDirs); err != nil {
			logger.Error("font sources", "error", err)
			return 1
		}
	}

	engine, err := renderer.EngineByName(cfg.engine)
	if err != nil {
		logger.Error("invalid engine", "error", err)
		return 2
	}

	document, err := readInput(input, stdin)
	if err != nil {
		logger.Error("failed to read input", "error", err)
		return 1
	}

	fontOpts := []fonts.Option{
		fonts.WithReporter(func(w fonts.Warning) {
			logger.Warn("font not loaded", "path", w.Path, "error", w.Err)
		}),
		fonts.WithHTTPClient(fonts.NewHTTPClient(logger.Named("http"))),
		fonts.WithEngineLogger(func(msg string) {
			logger.Trace(msg)
		}),
	}
	if cfg.cacheDir != "" {
		fontOpts = append(fontOpts, fonts.WithCacheDir(cfg.cacheDir))
	}

	logger.Debug("rendering", "input", inputName(input), "engine", engine.Name(), "fit_to", settings.FitTo.String())
	result, err := renderer.RenderSettings(ctx, document, settings,
		renderer.WithEngine(engine),
		renderer.WithFontOptions(fontOpts...),
	)
	if err != nil {
		logger.Error("render failed", "error", err)
		return 1
	}
	if result.Empty() {
		logger.Warn("document has no drawable area, writing an empty file")
	}

	out := outputPath(cfg.outPath, input)
	if out == "-" {
		if _, err := stdout.Write(result.PNG); err != nil {
			logger.Error("failed to write output", "error", err)
			return 1
		}
		return 0
	}
	if err := validation.ValidateOutputPath(out); err != nil {
		logger.Error("invalid output path", "error", err)
		return 1
	}
	if err := os.WriteFile(out, result.PNG, 0644); err != nil {
		logger.Error("failed to write output", "error", err)
		return 1
	}
	logger.Info("wrote PNG", "path", out, "width", result.Width, "height", result.Height)
	return 0
}

// loadOptions reads an options file. No path means no options.
func loadOptions(path string) (*options.RawOptions, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return options.DecodeHCL(data, path)
	}
	return options.DecodeJSON(data)
}

// applyOverrides layers the command line flags over the options file.
func applyOverrides(raw *options.RawOptions, flags *pflag.FlagSet, cfg config) (*options.RawOptions, error) {
	if raw == nil {
		raw = &options.RawOptions{}
	}

	if flags.Changed("background") {
		bg := cfg.background
		raw.Background = &bg
	}
	if flags.Changed("dpi") {
		dpi := cfg.dpi
		raw.DPI = &dpi
	}

	var fits []*options.RawFitTo
	if flags.Changed("zoom") {
		fits = append(fits, rawFit("zoom", cfg.zoom))
	}
	if flags.Changed("width") {
		fits = append(fits, rawFit("width", float64(cfg.width)))
	}
	if flags.Changed("height") {
		fits = append(fits, rawFit("height", float64(cfg.height)))
	}
	switch len(fits) {
	case 0:
	case 1:
		raw.FitTo = fits[0]
	default:
		return nil, errors.New("only one of --zoom, --width and --height may be set")
	}
	return raw, nil
}

func rawFit(mode string, value float64) *options.RawFitTo {
	return &options.RawFitTo{Mode: &mode, Value: &value}
}

func readInput(input string, stdin io.Reader) (string, error) {
	if input == "" || input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if err := validation.ValidateInputPath(input, false); err != nil {
		return "", err
	}
	return renderer.ReadDocument(input)
}

func inputName(input string) string {
	if input == "" || input == "-" {
		return "stdin"
	}
	return input
}

// outputPath picks the destination: the flag, else the input name with a
// .png extension, else stdout.
func outputPath(flagValue, input string) string {
	if flagValue != "" {
		return flagValue
	}
	if input == "" || input == "-" {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}
