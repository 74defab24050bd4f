package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/shapeview/internal/config"
	"github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/formatter"
	"github.com/mcncl/shapeview/internal/logging"
	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/parser"
	"github.com/mcncl/shapeview/internal/render"
	"github.com/mcncl/shapeview/internal/syntax"
	"github.com/mcncl/shapeview/internal/watch"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input file. If not specified, reads FILES or stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format      string   `help:"Output format: text, html, markdown, json or summary." short:"F"`
	Language    string   `help:"Override the language detected from the file extension." short:"l"`
	Config      string   `help:"Path to config file. Searches for .shapeview.yml upwards if not specified." short:"c" type:"path"`
	MaxDepth    *int     `help:"Render nested values at most this deep (0 = unlimited)." name:"max-depth"`
	Pretty      bool     `help:"Render markdown output for the terminal." short:"P"`
	Watch       bool     `help:"Re-render the input file whenever it changes." short:"w"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
	Files       []string `arg:"" optional:"" help:"Files to render, in order." type:"path"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Logger *zap.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// document is one input waiting to be rendered.
type document struct {
	source   string // file path, or "stdin"
	language string
	content  []byte
}

func main() {
	// Parse CLI arguments with Kong
	cli := kong.Must(&CLI,
		kong.Name("shapeview"),
		kong.Description("Render JSON, YAML and source syntax trees as nested tables"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := cli.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("shapeview version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fail(errors.NewConfigError("failed to set up logging", err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
	if err != nil {
		_ = logger.Sync()
		stop()
		fail(err)
	}
}

func fail(err error) {
	// Use our custom error handling to provide user-friendly error messages
	fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	fmt.Fprintf(os.Stderr, "\nFor help, run: shapeview --help\n")
	os.Exit(1)
}

// loadConfig merges defaults, the config file and command-line flags
func loadConfig() (*config.Config, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.Overrides{
		Format: CLI.Format,
		Debug:  CLI.Debug,
	}
	overrides.MaxDepth = CLI.MaxDepth
	if CLI.Pretty {
		pretty := true
		overrides.Pretty = &pretty
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}
	return cfg, nil
}

// inputPaths returns the files named on the command line, in order
func inputPaths() []string {
	if CLI.Input != "" {
		return []string{CLI.Input}
	}
	return CLI.Files
}

// run executes the main program logic
func run(ctx context.Context, app *Context) error {
	paths := inputPaths()
	app.Logger.Debug("starting",
		zap.String("format", app.Config.Format),
		zap.Strings("files", paths),
		zap.Bool("watch", CLI.Watch))

	if CLI.Watch {
		if len(paths) != 1 {
			return errors.NewInputError("watch mode needs exactly one input file", errors.ErrNoInput)
		}
		return watchFile(ctx, app, paths[0])
	}

	var (
		outputs []string
		err     error
	)
	if len(paths) == 0 {
		doc, readErr := readStdin(app)
		if readErr != nil {
			return readErr
		}
		extractor := syntax.NewExtractor(syntaxOptions(app.Config), app.Logger)
		defer extractor.Close()

		out, renderErr := renderDocument(ctx, app, doc, extractor)
		if renderErr != nil {
			return renderErr
		}
		outputs = []string{out}
	} else {
		outputs, err = renderFiles(ctx, app, paths)
		if err != nil {
			return err
		}
	}

	return writeOutput(app, strings.Join(outputs, "\n"))
}

// renderFiles renders every path concurrently and returns the outputs in the
// order the paths were given
func renderFiles(ctx context.Context, app *Context, paths []string) ([]string, error) {
	outputs := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			doc, err := readFile(path)
			if err != nil {
				return err
			}

			// Tree-sitter parsers are not safe for concurrent use.
			extractor := syntax.NewExtractor(syntaxOptions(app.Config), app.Logger)
			defer extractor.Close()

			out, err := renderDocument(gctx, app, doc, extractor)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// renderDocument parses one input and renders it, header included
func renderDocument(ctx context.Context, app *Context, doc document, extractor *syntax.Extractor) (string, error) {
	logger := app.Logger.With(zap.String("source", doc.source), zap.String("language", doc.language))

	var root models.JSONValue
	switch {
	case parser.IsDataLanguage(doc.language):
		parsed, err := parser.ParseData(bytes.NewReader(doc.content), doc.language)
		if err != nil {
			return "", err
		}
		root = parsed.Root
	case syntax.Supports(doc.language):
		tree, err := extractor.Extract(ctx, doc.language, doc.content)
		if err != nil {
			return "", err
		}
		root = tree
	default:
		return "", errors.NewInputError(
			fmt.Sprintf("cannot render '%s' as %s (supported: json, yaml, %s)",
				doc.source, doc.language, strings.Join(syntax.Languages(), ", ")),
			errors.ErrUnsupportedLanguage,
		)
	}

	format := app.Config.Format
	renderer, err := render.New(format, render.OptionsFromConfig(app.Config, logger))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(render.Header(format, doc.source, doc.language))
	if err := renderer.Render(&buf, root); err != nil {
		return "", err
	}
	logger.Debug("rendered", zap.Int("bytes", buf.Len()))

	if !app.Config.Pretty.Enabled {
		return buf.String(), nil
	}
	if format != "markdown" {
		logger.Warn("pretty output only applies to the markdown format")
		return buf.String(), nil
	}
	pretty, err := formatter.NewFormatter(app.Config.Pretty.Style, app.Config.Pretty.WordWrap).Format(buf.String())
	if err != nil {
		return "", errors.NewRenderError("failed to render markdown for the terminal", err)
	}
	return pretty, nil
}

// readFile loads a named input and works out its language
func readFile(path string) (document, error) {
	content, err := parser.ReadFile(path)
	if err != nil {
		return document{}, err
	}
	return document{source: path, language: language(path), content: content}, nil
}

func language(path string) string {
	if CLI.Language != "" {
		return CLI.Language
	}
	if path == "stdin" {
		return parser.LanguageJSON
	}
	return parser.DetectLanguage(path)
}

// readStdin reads piped input, or prompts for it in interactive mode
func readStdin(app *Context) (document, error) {
	if f, ok := app.Stdin.(*os.File); ok {
		// Check if stdin has data
		stdinInfo, err := f.Stat()
		if err != nil {
			return document{}, errors.NewInputError("failed to access stdin", err)
		}

		// Interactive mode or piped input
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			// Terminal is interactive (not piped)
			if CLI.Interactive {
				return readInteractiveInput(app)
			}
			// No data provided on stdin and not in interactive mode
			return document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	data, err := io.ReadAll(app.Stdin)
	if err != nil {
		return document{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return document{source: "stdin", language: language("stdin"), content: data}, nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(app *Context) (document, error) {
	fmt.Fprintln(os.Stderr, "shapeview Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON or YAML below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(app.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(line)
		if err == io.EOF {
			// End of input
			break
		}
		if err != nil {
			return document{}, errors.NewInputError("error reading input", err)
		}
	}

	data := builder.String()
	if strings.TrimSpace(data) == "" {
		return document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing input...")
	return document{source: "stdin", language: language("stdin"), content: []byte(data)}, nil
}

// watchFile renders path once and again after every change until ctx is done
func watchFile(ctx context.Context, app *Context, path string) error {
	extractor := syntax.NewExtractor(syntaxOptions(app.Config), app.Logger)
	defer extractor.Close()

	renderOnce := func() error {
		doc, err := readFile(path)
		if err != nil {
			return err
		}
		out, err := renderDocument(ctx, app, doc, extractor)
		if err != nil {
			return err
		}
		return writeOutput(app, out)
	}

	if err := renderOnce(); err != nil {
		return err
	}

	w, err := watch.New(app.Logger)
	if err != nil {
		return errors.NewInputError("failed to start watching", err)
	}
	defer func() { _ = w.Close() }()

	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", path)
	return w.Watch(ctx, path, func(string) {
		// A half-written file is common mid-save; report and keep watching.
		if err := renderOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		}
	})
}

func syntaxOptions(cfg *config.Config) syntax.Options {
	return syntax.Options{
		NamedOnly:   cfg.Syntax.NamedOnly,
		IncludeText: cfg.Syntax.IncludeText,
	}
}

// writeOutput writes rendered output to file or stdout
func writeOutput(app *Context, out string) error {
	if CLI.Output != "" {
		// Write to file
		err := os.WriteFile(CLI.Output, []byte(out), 0o644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	// Write to stdout
	if _, err := io.WriteString(app.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
