// Command get-papers-list searches PubMed and lists papers with at least one
// author affiliated with a pharmaceutical or biotech company.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/config"
	"github.com/henrybloomingdale/pharma-papers/internal/eutils"
	"github.com/henrybloomingdale/pharma-papers/internal/logging"
	"github.com/henrybloomingdale/pharma-papers/internal/output"
	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	var debug bool
	root := newRootCmd(stdout, stderr, &debug)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !debug {
		// The config may have failed to load.
		debug, _ = root.Flags().GetBool("debug")
	}
	report(stderr, err, debug)
	return 1
}

// newRootCmd builds the command. debug receives the resolved debug setting
// once the config has loaded.
func newRootCmd(stdout, stderr io.Writer, debug *bool) *cobra.Command {
	var (
		flagYear string
		flagType string
	)

	cmd := &cobra.Command{
		Use:   "get-papers-list <query...>",
		Short: "List PubMed papers with pharmaceutical/biotech company authors",
		Long: `Search PubMed with any supported query syntax, scan every author's
affiliations for pharmaceutical or biotech companies, and write the matching
papers as CSV (or another format chosen by --format or the file extension).

Without -f the results are printed as a table.`,
		Example: `  get-papers-list "cancer immunotherapy" -m 20 -f results.csv
  get-papers-list crispr AND therapy --year 2020-2024 --format json`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			*debug = cfg.Debug
			q, err := papers.NewQuery(buildQuery(args, flagYear, flagType), cfg.MaxResults)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, q, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().StringVar(&flagYear, "year", "", "restrict by publication year or range (e.g. 2020-2025)")
	cmd.Flags().StringVar(&flagType, "type", "", "restrict by publication type (review, trial, meta-analysis, randomized, case-report)")
	return cmd
}

// run performs one search-fetch-classify-write pass.
func run(ctx context.Context, cfg *config.Config, q papers.Query, stdout, stderr io.Writer) error {
	log := logging.New(stderr, cfg.LogLevel)
	if cfg.ConfigFile != "" {
		log.Debug("using config file", "path", cfg.ConfigFile)
	}

	client := eutils.NewClient(
		eutils.WithBaseURL(cfg.BaseURL),
		eutils.WithAPIKey(cfg.APIKey),
		eutils.WithTool(cfg.Tool),
		eutils.WithEmail(cfg.Email),
		eutils.WithTimeout(cfg.Timeout),
		eutils.WithLogger(log),
	)
	finder := &papers.Finder{
		Searcher: client,
		Fetcher:  client,
		Fallback: cfg.Fallback,
		Logger:   log,
	}

	res, err := finder.Find(ctx, q)
	if err != nil {
		return err
	}

	opts := output.Options{Format: cfg.Format, Stdout: stdout}
	if err := output.Write(ctx, cfg.File, res.Papers, opts); err != nil {
		return err
	}
	if cfg.File != "" {
		log.Info("results saved", "path", cfg.File, "papers", len(res.Papers))
	}
	return nil
}

// buildQuery joins the positional words and appends optional filters.
func buildQuery(args []string, year, pubType string) string {
	query := strings.Join(args, " ")

	// Multi-word types must be quoted.
	if pubType != "" {
		typeMap := map[string]string{
			"review":        `"review"[pt]`,
			"trial":         `"clinical trial"[pt]`,
			"meta-analysis": `"meta-analysis"[pt]`,
			"randomized":    `"randomized controlled trial"[pt]`,
			"case-report":   `"case reports"[pt]`,
		}
		if mapped, ok := typeMap[strings.ToLower(pubType)]; ok {
			query += " AND " + mapped
		} else {
			query += fmt.Sprintf(` AND "%s"[pt]`, pubType)
		}
	}

	if year != "" {
		if from, to, ok := strings.Cut(year, "-"); ok {
			query += fmt.Sprintf(" AND %s:%s[pdat]", from, to)
		} else {
			query += fmt.Sprintf(" AND %s[pdat]", year)
		}
	}

	return query
}

// report prints err as a single line. With debug every wrapped cause is
// listed below it.
func report(w io.Writer, err error, debug bool) {
	switch {
	case errors.Is(err, papers.ErrNoMatches):
		fmt.Fprintln(w, "No papers found matching the query")
	case errors.Is(err, papers.ErrNoIndustry):
		fmt.Fprintln(w, "No papers with pharmaceutical/biotech affiliations found")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if !debug {
		return
	}
	for i, msg := range apperr.Chain(err) {
		fmt.Fprintf(w, "  [%d] %s\n", i, msg)
	}
}
