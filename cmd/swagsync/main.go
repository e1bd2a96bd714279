package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/swagsync/swagsync"
	"github.com/swagsync/swagsync/aliases"
	"github.com/swagsync/swagsync/config"
	"github.com/swagsync/swagsync/endpoints"
	"github.com/swagsync/swagsync/internal/cliutil"
	"github.com/swagsync/swagsync/internal/mcpserver"
	"github.com/swagsync/swagsync/internal/severity"
	"github.com/swagsync/swagsync/merge"
	"github.com/swagsync/swagsync/models"
	"github.com/swagsync/swagsync/pysrc"
	"github.com/swagsync/swagsync/report"
	"github.com/swagsync/swagsync/spec"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("swagsync v%s\n", swagsync.Version())
	case "help", "-h", "--help":
		printUsage()
	case "sync":
		if err := handleSync(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := handleCheck(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "coverage":
		if err := handleCoverage(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "badge":
		if err := handleBadge(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := mcpserver.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are shared by every scanning command.
type commonFlags struct {
	configPath  string
	handlers    string
	modelsDir   string
	swagger     string
	projectRoot string
	strict      bool
	verbose     bool
}

func addCommonFlags(fs *flag.FlagSet, flags *commonFlags) {
	fs.StringVar(&flags.configPath, "c", "", "path to the configuration file (default: "+config.DefaultFile+" when present)")
	fs.StringVar(&flags.handlers, "handlers", "", "handler directory to scan (overrides config)")
	fs.StringVar(&flags.modelsDir, "models", "", "model directory to scan (overrides config)")
	fs.StringVar(&flags.swagger, "swagger", "", "swagger document to sync against (overrides config)")
	fs.StringVar(&flags.projectRoot, "project-root", "", "root for absolute-import alias resolution")
	fs.BoolVar(&flags.strict, "strict", false, "fail on documentation/decorator method mismatches")
	fs.BoolVar(&flags.verbose, "verbose", false, "log scan diagnostics at debug level")
}

// resolveConfig loads the configuration file (explicit path, else the
// default file when present, else built-in defaults) and applies flag
// overrides on top.
func resolveConfig(flags *commonFlags) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case flags.configPath != "":
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(config.DefaultFile); err == nil {
			loaded, err := config.Load(config.DefaultFile)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else {
			cfg = config.Default()
		}
	}
	applyOverrides(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, flags *commonFlags) {
	if flags.handlers != "" {
		cfg.HandlersDir = flags.handlers
	}
	if flags.modelsDir != "" {
		cfg.ModelsDir = flags.modelsDir
	}
	if flags.swagger != "" {
		cfg.SwaggerFile = flags.swagger
	}
	if flags.projectRoot != "" {
		cfg.ProjectRoot = flags.projectRoot
	}
	if flags.strict {
		cfg.Strict = true
	}
}

func newLogger(verbose bool) pysrc.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return pysrc.NewSlogAdapter(slog.New(handler))
}

// scanResults bundles one full source scan.
type scanResults struct {
	endpoints  *endpoints.Result
	components map[string]*spec.Schema
}

func runScan(cfg *config.Config, logger pysrc.Logger) (*scanResults, error) {
	markers, err := pysrc.NewMarkers(cfg.Markers.Start, cfg.Markers.End)
	if err != nil {
		return nil, err
	}

	es := endpoints.NewScanner()
	defer es.Close()
	es.Strict = cfg.Strict
	es.IgnorePatterns = cfg.IgnorePatterns
	es.Markers = markers
	es.RouteDecorator = cfg.Decorators.Route
	es.StaticDecorator = cfg.Decorators.Static
	es.PatternDecorator = cfg.Decorators.Pattern
	es.VersionValues = cfg.VersionValues
	es.Logger = logger

	scanned, err := es.Scan(cfg.HandlersDir)
	if err != nil {
		return nil, fmt.Errorf("scanning handlers: %w", err)
	}

	results := &scanResults{endpoints: scanned}
	if cfg.ModelsDir != "" {
		projectRoot := cfg.ProjectRoot
		if projectRoot == "" {
			projectRoot = filepath.Dir(cfg.HandlersDir)
		}
		reg := aliases.NewRegistry(projectRoot)
		defer reg.Close()
		reg.Logger = logger

		ms := models.NewScanner()
		defer ms.Close()
		ms.Aliases = reg
		ms.Markers = markers
		ms.ComponentDecorator = cfg.Decorators.Component
		ms.PropertyDecorator = cfg.Decorators.Property
		ms.AttributeDecorator = cfg.Decorators.Attribute
		ms.Logger = logger

		modelResult, err := ms.Scan(cfg.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("scanning models: %w", err)
		}
		results.components = modelResult.Components
	}
	return results, nil
}

func setupSyncFlags() (*flag.FlagSet, *commonFlags, *bool, *bool) {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	flags := &commonFlags{}
	addCommonFlags(fs, flags)
	dryRun := fs.Bool("dry-run", false, "report changes without writing the swagger file")
	validateDoc := fs.Bool("validate", false, "validate the merged document against the OpenAPI schema")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: swagsync sync [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Scan handlers and models, merge into the swagger document, and write it back.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  swagsync sync -c .swagsync.yaml\n")
		_, _ = fmt.Fprintf(output, "  swagsync sync -handlers src/handlers -models src/models -swagger api/swagger.yaml\n")
		_, _ = fmt.Fprintf(output, "  swagsync sync --dry-run --strict\n")
	}
	return fs, flags, dryRun, validateDoc
}

func handleSync(args []string) error {
	fs, flags, dryRun, validateDoc := setupSyncFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	doc, err := spec.Load(cfg.SwaggerFile)
	if err != nil {
		return err
	}
	results, err := runScan(cfg, newLogger(flags.verbose))
	if err != nil {
		return err
	}

	res := merge.Merge(doc, results.endpoints.Endpoints)
	if results.components != nil {
		res.Merge(merge.MergeComponents(doc, results.components))
	}

	for _, note := range res.Notes {
		cliutil.Writef(os.Stdout, "[%s] %s\n", severity.SeverityInfo, note)
	}
	for key, lines := range res.Diffs {
		cliutil.Writef(os.Stdout, "\n%s:\n", key)
		for _, line := range lines {
			cliutil.Writef(os.Stdout, "  %s\n", line)
		}
	}

	if !res.Changed {
		cliutil.Writef(os.Stdout, "✓ %s is up to date\n", cfg.SwaggerFile)
		return nil
	}

	if *validateDoc || cfg.ValidateDocument {
		if err := spec.Validate(context.Background(), doc); err != nil {
			return fmt.Errorf("merged document is invalid: %w", err)
		}
	}
	if *dryRun {
		cliutil.Writef(os.Stdout, "\ndry run: %s not written (%d changes)\n", cfg.SwaggerFile, len(res.Notes))
		return nil
	}
	if err := spec.Save(cfg.SwaggerFile, doc); err != nil {
		return err
	}
	cliutil.Writef(os.Stdout, "\nwrote %s (%d changes)\n", cfg.SwaggerFile, len(res.Notes))
	return nil
}

func setupCheckFlags() (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	flags := &commonFlags{}
	addCommonFlags(fs, flags)

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: swagsync check [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Scan and report drift without writing anything. Exits 1 when the swagger\n")
		_, _ = fmt.Fprintf(output, "document is out of date or carries orphaned entries.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs, flags
}

func handleCheck(args []string) error {
	fs, flags := setupCheckFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	doc, err := spec.Load(cfg.SwaggerFile)
	if err != nil {
		return err
	}
	results, err := runScan(cfg, newLogger(flags.verbose))
	if err != nil {
		return err
	}

	res := merge.Merge(doc, results.endpoints.Endpoints)
	if results.components != nil {
		res.Merge(merge.MergeComponents(doc, results.components))
	}
	orphanPaths, orphanComponents := merge.DetectOrphans(doc, results.endpoints.Endpoints, results.components)

	findings := 0
	for _, note := range res.Notes {
		cliutil.Writef(os.Stdout, "[%s] out of date: %s\n", severity.SeverityError, note)
		findings++
	}
	for _, o := range orphanPaths {
		cliutil.Writef(os.Stdout, "[%s] orphaned operation: %s %s\n", severity.SeverityError, strings.ToUpper(o.Method), o.Path)
		findings++
	}
	for _, name := range orphanComponents {
		cliutil.Writef(os.Stdout, "[%s] orphaned component: %s\n", severity.SeverityError, name)
		findings++
	}

	if findings > 0 {
		cliutil.Writef(os.Stdout, "\n%d findings; run 'swagsync sync' to update %s\n", findings, cfg.SwaggerFile)
		os.Exit(1)
	}
	cliutil.Writef(os.Stdout, "✓ %s is in sync\n", cfg.SwaggerFile)
	return nil
}

func setupCoverageFlags() (*flag.FlagSet, *commonFlags, *string, *string) {
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)
	flags := &commonFlags{}
	addCommonFlags(fs, flags)
	format := fs.String("format", "", "report format: json, text, markdown, or xml (default from config)")
	output := fs.String("o", "", "write the report to a file instead of stdout")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: swagsync coverage [flags]\n\n")
		_, _ = fmt.Fprintf(out, "Compute and render documentation coverage for the scanned codebase.\n\n")
		_, _ = fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(out, "\nExamples:\n")
		_, _ = fmt.Fprintf(out, "  swagsync coverage -format json\n")
		_, _ = fmt.Fprintf(out, "  swagsync coverage -format markdown -o coverage.md\n")
	}
	return fs, flags, format, output
}

func handleCoverage(args []string) error {
	fs, flags, format, output := setupCoverageFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	summary, err := buildSummary(cfg, flags)
	if err != nil {
		return err
	}

	renderFormat := cfg.Report.Format
	if *format != "" {
		renderFormat = *format
	}
	target := cfg.Report.Output
	if *output != "" {
		target = *output
	}

	if target == "" {
		return report.Render(os.Stdout, renderFormat, summary)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	return report.Render(f, renderFormat, summary)
}

func setupBadgeFlags() (*flag.FlagSet, *commonFlags, *string) {
	fs := flag.NewFlagSet("badge", flag.ContinueOnError)
	flags := &commonFlags{}
	addCommonFlags(fs, flags)
	output := fs.String("o", "", "write the badge to a file instead of stdout")

	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintf(out, "Usage: swagsync badge [flags]\n\n")
		_, _ = fmt.Fprintf(out, "Render an SVG coverage badge for the scanned codebase.\n\n")
		_, _ = fmt.Fprintf(out, "Flags:\n")
		fs.PrintDefaults()
	}
	return fs, flags, output
}

func handleBadge(args []string) error {
	fs, flags, output := setupBadgeFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	cfg, err := resolveConfig(flags)
	if err != nil {
		return err
	}

	summary, err := buildSummary(cfg, flags)
	if err != nil {
		return err
	}

	target := cfg.Report.Badge
	if *output != "" {
		target = *output
	}
	if target == "" {
		return report.RenderBadge(os.Stdout, summary.Percent)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating badge file: %w", err)
	}
	defer f.Close()
	return report.RenderBadge(f, summary.Percent)
}

func buildSummary(cfg *config.Config, flags *commonFlags) (report.Summary, error) {
	doc, err := spec.Load(cfg.SwaggerFile)
	if err != nil {
		return report.Summary{}, err
	}
	results, err := runScan(cfg, newLogger(flags.verbose))
	if err != nil {
		return report.Summary{}, err
	}
	return report.Build(doc, results.endpoints, results.components), nil
}

func printUsage() {
	fmt.Println(`swagsync - swagger/source synchronization for Python codebases

Usage:
  swagsync <command> [options]

Commands:
  sync        Scan handlers and models and merge the results into the swagger document
  check       Report drift without writing; exits 1 when out of sync
  coverage    Render a documentation-coverage report (json, text, markdown, xml)
  badge       Render an SVG coverage badge
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  swagsync sync -c .swagsync.yaml
  swagsync sync -handlers src/handlers -swagger api/swagger.yaml --dry-run
  swagsync check --strict
  swagsync coverage -format markdown -o coverage.md
  swagsync badge -o badge.svg

Run 'swagsync <command> --help' for more information on a command.`)
}
