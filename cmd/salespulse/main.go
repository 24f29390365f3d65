package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/spektr-org/salespulse/config"
	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/logger"
	"github.com/spektr-org/salespulse/report"
	"github.com/spektr-org/salespulse/sales"
	"github.com/spektr-org/salespulse/schema"
	"github.com/spektr-org/salespulse/server"
	"github.com/spektr-org/salespulse/source"
)

// ============================================================================
// SALESPULSE CLI — Sales export → summary, pivots, HTTP API
// ============================================================================

const version = "0.1.0"

const usage = `salespulse — sales export reports

Usage:
  salespulse report [flags]              summary of a CSV/JSON export
  salespulse pivot -dimension <dim> [flags]
  salespulse serve                       HTTP API (configured from the environment)
  salespulse version

Examples:
  salespulse report -file ventas.csv
  salespulse report -url "https://docs.google.com/spreadsheets/d/<id>/export?format=csv" -format pretty
  salespulse pivot -file orders.csv -dimension payment_method -format csv -out by_payment.csv
  salespulse pivot -file orders.csv -dimension status -filter attribution_source=instagram

Formats:
  report: text (default), json, pretty, csv
  pivot:  text (default), json, pretty, chart, csv

Environment:
  APP_ENV, LOG_LEVEL, HTTP_HOST, HTTP_PORT, DATA_SOURCE, SCHEMA_FILE,
  CACHE_TTL, FETCH_TIMEOUT (a .env file is read when present)
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "report":
		return runReport(ctx, cfg, rest, stdout, stderr)
	case "pivot":
		return runPivot(ctx, cfg, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, cfg, rest, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "salespulse %s\n", version)
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

// ============================================================================
// SHARED FLAGS
// ============================================================================

type commonFlags struct {
	file   string
	url    string
	schema string
	format string
	out    string
}

func bindCommon(fs *flag.FlagSet, c *commonFlags) {
	fs.StringVar(&c.file, "file", "", "Path to a CSV or JSON export")
	fs.StringVar(&c.url, "url", "", "URL of a CSV or JSON export (e.g. a Google Sheets export link)")
	fs.StringVar(&c.schema, "schema", "", "Path to a YAML schema (column aliases, status vocabulary)")
	fs.StringVar(&c.format, "format", "text", "Output format")
	fs.StringVar(&c.out, "out", "", "Write output to file instead of stdout")
}

// location picks -file, then -url, then DATA_SOURCE.
func (c commonFlags) location(cfg *config.Config) (string, error) {
	switch {
	case c.file != "" && c.url != "":
		return "", fmt.Errorf("-file and -url are mutually exclusive")
	case c.file != "":
		return c.file, nil
	case c.url != "":
		return c.url, nil
	case cfg.Source.Location != "":
		return cfg.Source.Location, nil
	}
	return "", fmt.Errorf("one of -file, -url or DATA_SOURCE is required")
}

// filterFlag collects repeated -filter dimension=value pairs.
type filterFlag map[string][]string

func (f filterFlag) String() string {
	parts := make([]string, 0, len(f))
	for k, vs := range f {
		for _, v := range vs {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, ",")
}

func (f filterFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(value) == "" {
		return fmt.Errorf("filter must look like dimension=value, got %q", s)
	}
	dim, err := sales.ParseDimension(key)
	if err != nil {
		return err
	}
	f[string(dim)] = append(f[string(dim)], strings.TrimSpace(value))
	return nil
}

// session is everything a one-shot command needs.
type session struct {
	log      *zap.Logger
	pipeline *sales.Pipeline
	dataset  sales.Dataset
	display  schema.Display
}

func open(ctx context.Context, cfg *config.Config, c commonFlags) (*session, error) {
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}

	schemaPath := c.schema
	if schemaPath == "" {
		schemaPath = cfg.Source.SchemaFile
	}
	sch, err := schema.LoadOrDefault(schemaPath)
	if err != nil {
		return nil, err
	}

	pipeline, err := sales.NewPipeline(sch, sales.WithLogger(log))
	if err != nil {
		return nil, err
	}

	location, err := c.location(cfg)
	if err != nil {
		return nil, err
	}
	src, err := source.Open(location, source.NewHTTPClient(cfg.Source.FetchTimeout))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Source.FetchTimeout)
	defer cancel()
	ds, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("export loaded", zap.String("source", src.Name()), zap.Int("rows", len(ds.Rows)))

	return &session{log: log, pipeline: pipeline, dataset: ds, display: sch.Display}, nil
}

// output returns stdout or the -out file; the closer is never nil.
func output(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// ============================================================================
// REPORT
// ============================================================================

func runReport(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c commonFlags
	bindCommon(fs, &c)
	top := fs.Int("top", server.LeaderboardSize, "Products listed in the text leaderboard (0 hides it)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkFormat(c.format, "text", "json", "pretty", "csv"); err != nil {
		return err
	}

	s, err := open(ctx, cfg, c)
	if err != nil {
		return err
	}
	defer s.log.Sync() //nolint:errcheck

	summary, leaders, err := s.pipeline.Report(s.dataset, sales.DimProduct, sales.RankUnits, *top)
	if err != nil {
		return err
	}
	if *top <= 0 {
		leaders = nil
	}

	w, closeOut, err := output(stdout, c.out)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck

	switch c.format {
	case "json", "pretty":
		err = writeJSON(w, summary, c.format)
	case "csv":
		err = report.SummaryCSV(w, summary)
	default:
		err = report.Text(w, summary, leaders, report.FormatterFor(s.display))
	}
	if err != nil {
		return err
	}
	if c.out != "" {
		s.log.Info("report written", zap.String("path", c.out), zap.String("format", c.format))
	}
	return closeOut()
}

// ============================================================================
// PIVOT
// ============================================================================

func runPivot(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pivot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c commonFlags
	bindCommon(fs, &c)
	dimFlag := fs.String("dimension", "", "Dimension to pivot on: product, payment_method, attribution_source, status")
	filters := filterFlag{}
	fs.Var(filters, "filter", "Keep rows where dimension=value (repeatable, case-insensitive)")
	sortFlag := fs.String("sort", string(sales.PivotByRevenue), "Row order: revenue, revenue_asc, count, label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := checkFormat(c.format, "text", "json", "pretty", "chart", "csv"); err != nil {
		return err
	}
	dim, err := sales.ParseDimension(*dimFlag)
	if err != nil {
		return err
	}
	order, err := sales.ParsePivotOrder(*sortFlag)
	if err != nil {
		return err
	}

	s, err := open(ctx, cfg, c)
	if err != nil {
		return err
	}
	defer s.log.Sync() //nolint:errcheck

	rows, err := s.pipeline.Pivot(s.dataset, dim, engine.Filters{Dimensions: filters}, order)
	if err != nil {
		return err
	}

	w, closeOut, err := output(stdout, c.out)
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck

	switch c.format {
	case "json", "pretty":
		err = writeJSON(w, pivotOutput{Dimension: dim, Rows: rows}, c.format)
	case "chart":
		err = writeJSON(w, sales.PivotChart(rows, dim), "pretty")
	case "csv":
		err = report.PivotCSV(w, rows, dim)
	default:
		err = report.Table(w, sales.PivotTable(rows, dim, s.display.Currency))
	}
	if err != nil {
		return err
	}
	return closeOut()
}

type pivotOutput struct {
	Dimension sales.Dimension  `json:"dimension"`
	Rows      []sales.PivotRow `json:"rows"`
}

// ============================================================================
// SERVE
// ============================================================================

func runServe(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", cfg.Source.SchemaFile, "Path to a YAML schema")
	location := fs.String("source", cfg.Source.Location, "File path or URL served by GET endpoints")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	sch, err := schema.LoadOrDefault(*schemaPath)
	if err != nil {
		return err
	}
	pipeline, err := sales.NewPipeline(sch, sales.WithLogger(log))
	if err != nil {
		return err
	}

	opts := []server.HandlerOption{server.WithLogger(log)}
	if *location != "" {
		src, err := source.Open(*location, source.NewHTTPClient(cfg.Source.FetchTimeout))
		if err != nil {
			return err
		}
		opts = append(opts, server.WithSource(source.NewCached(src, cfg.Source.CacheTTL, log), cfg.Source.FetchTimeout))
		log.Info("serving data source", zap.String("source", src.Name()), zap.Duration("cache_ttl", cfg.Source.CacheTTL))
	} else {
		log.Warn("no DATA_SOURCE configured; only POST endpoints will answer")
	}

	if logger.IsProduction(cfg.App.Env) {
		server.SetReleaseMode()
	}
	router := server.NewEngine(log)
	server.RegisterRoutes(router, server.NewHandler(pipeline, opts...))
	return server.NewServer(cfg.Server, router, log).Run(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
