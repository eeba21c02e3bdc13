package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chrisptang/jate/internal/logger"
	"github.com/chrisptang/jate/pkg/jate/store"
	"github.com/chrisptang/jate/pkg/jate/store/sqlite"
)

const usage = `usage: jate-runs -db runs.db [flags] <command>

commands:
  list          list stored runs, newest first
  show <id>     print a run's parameters, metrics and top terms
  delete <id>   remove a run
`

func main() {
	var (
		dbPath    = flag.String("db", "", "SQLite run store (required)")
		limit     = flag.Int("limit", 20, "Maximum runs to list (0 lists all)")
		top       = flag.Int("top", 25, "Number of terms to show (0 shows all)")
		logLevel  = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
		logFormat = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger.Setup(*logLevel, *logFormat)
	log := logger.WithComponent("jate-runs")

	if *dbPath == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Error("open store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := execute(ctx, st, flag.Args(), *limit, *top, os.Stdout); err != nil {
		log.Error("command failed", "error", err)
		st.Close()
		os.Exit(1)
	}
}

func execute(ctx context.Context, st store.Store, args []string, limit, top int, out io.Writer) error {
	switch args[0] {
	case "list":
		return listRuns(ctx, st, limit, out)
	case "show", "delete":
		if len(args) != 2 {
			return fmt.Errorf("%s needs a run id", args[0])
		}
		if args[0] == "show" {
			return showRun(ctx, st, args[1], top, out)
		}
		if err := st.DeleteRun(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listRuns(ctx context.Context, st store.Store, limit int, out io.Writer) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGORITHM\tCREATED\tCANDIDATES\tTERMS\tMETRICS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Algorithm, r.CreatedAt.Format(time.RFC3339), r.Candidates, r.Terms, formatMetrics(r.Metrics))
	}
	return w.Flush()
}

func showRun(ctx context.Context, st store.Store, id string, top int, out io.Writer) error {
	r, err := st.GetRun(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run:        %s\n", r.ID)
	fmt.Fprintf(out, "Algorithm:  %s\n", r.Algorithm)
	fmt.Fprintf(out, "Created:    %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Candidates: %d\n", r.Candidates)
	fmt.Fprintf(out, "Filter:     min_total_frequency=%d top_k_percent=%g\n", r.Filter.MinTotalFrequency, r.Filter.Fraction())
	if len(r.Params) > 0 {
		fmt.Fprintf(out, "Params:     %s\n", formatParams(r.Params))
	}
	if len(r.Metrics) > 0 {
		fmt.Fprintf(out, "Metrics:    %s\n", formatMetrics(r.Metrics))
	}

	terms := r.Terms
	if top > 0 && len(terms) > top {
		terms = terms[:top]
	}
	fmt.Fprintf(out, "\nTop %d of %d terms:\n", len(terms), len(r.Terms))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range terms {
		fmt.Fprintf(w, "%d\t%s\t%.4f\n", t.Rank, t.Term, t.Score)
	}
	return w.Flush()
}

func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, m[k])
	}
	return strings.Join(parts, " ")
}

func formatParams(p map[string]any) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, " ")
}
