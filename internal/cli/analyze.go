package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/engine"
)

type analyzeOptions struct {
	catalog string
	output  string
	asJSON  bool
	watch   bool
}

func newAnalyzeCommand(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <collection>",
		Short: "Build the synergy graph of a collection and report on it",
		Long: `Analyze loads a collection file (JSON, YAML or an Arena deck list), detects
card interactions, replays stored graph edits and prints the analysis report.

With --watch the collection is re-analyzed whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalog, "catalog", "", "Scryfall card list used to resolve deck list names")
	f.StringVarP(&opts.output, "output", "o", "", "write the full result as JSON to this file")
	f.BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-analyze when the file changes")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	ctx := cmd.Context()
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	analyzeOnce := func() error {
		col, err := a.loadCollection(path, opts.catalog)
		if err != nil {
			return err
		}
		result, err := svc.Analyze(ctx, col)
		if err != nil {
			return err
		}
		if opts.output != "" {
			if err := writeJSONFile(opts.output, result); err != nil {
				return err
			}
		}
		if opts.asJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		return printSummary(cmd.OutOrStdout(), result)
	}

	if err := analyzeOnce(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	debounce, err := a.cfg.WatchDebounce()
	if err != nil {
		return err
	}
	watcher := collection.NewWatcher(path, debounce, a.logger)
	a.logger.Info("watching collection", zap.String("path", path), zap.Duration("debounce", debounce))

	err = watcher.Watch(ctx, func() {
		if err := analyzeOnce(); err != nil {
			// A half-written file fails to parse; the next write retries.
			a.logger.Warn("re-analysis failed", zap.String("path", path), zap.Error(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printSummary(w io.Writer, r *engine.Result) error {
	report := r.Report
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Collection:\t%s\n", r.CollectionName)
	fmt.Fprintf(tw, "Cards:\t%d\n", r.Graph.Stats.NodeCount)
	fmt.Fprintf(tw, "Interactions:\t%d\n", r.Graph.Stats.EdgeCount)
	fmt.Fprintf(tw, "Density:\t%.3f\n", r.Graph.Stats.Density)
	fmt.Fprintf(tw, "Synergy score:\t%.3f\n", report.SynergyScore)
	fmt.Fprintf(tw, "Clustering:\t%.3f\n", report.AverageClustering)
	fmt.Fprintf(tw, "Components:\t%d\n", report.NumComponents)
	fmt.Fprintf(tw, "Communities:\t%d\n", len(report.Communities))
	if r.SnapshotID != "" {
		fmt.Fprintf(tw, "Snapshot:\t%s\n", r.SnapshotID)
	}

	if len(report.KeyCards) > 0 {
		fmt.Fprintln(tw, "\nKey cards\tscore\tdegree\tbetweenness\tpagerank\tclustering")
		for _, kc := range report.KeyCards {
			m := kc.Metrics
			fmt.Fprintf(tw, "  %s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n", kc.Name, m.Composite, m.Degree, m.Betweenness, m.PageRank, m.Clustering)
		}
	}

	if len(report.WeakLinks) > 0 {
		names := make([]string, 0, len(report.WeakLinks))
		for _, wl := range report.WeakLinks {
			names = append(names, wl.Name)
		}
		fmt.Fprintf(tw, "\nWeak links:\t%s\n", strings.Join(names, ", "))
	}

	if len(report.InteractionDistribution) > 0 {
		fmt.Fprintln(tw, "\nInteraction\tedges")
		for _, name := range sortedKeys(report.InteractionDistribution) {
			fmt.Fprintf(tw, "  %s\t%d\n", name, report.InteractionDistribution[name])
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
