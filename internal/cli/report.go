package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/analysis"
	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy/engine"
	"github.com/ramonehamilton/seers-orb/internal/storage/repository"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		catalog string
		history int
		id      string
	)

	cmd := &cobra.Command{
		Use:   "report <collection>",
		Short: "Show stored analysis reports",
		Long: `Report prints the newest stored report of a collection as JSON. With
--history it lists the stored snapshots instead; --id prints one snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.requireStorage(ctx)
			if err != nil {
				return err
			}
			col, err := a.loadCollection(args[0], catalog)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case id != "":
				snapshot, err := db.Reports().GetByID(ctx, id)
				if err != nil {
					return err
				}
				if snapshot.CollectionID != col.ID {
					return fmt.Errorf("%w: snapshot %s belongs to another collection", repository.ErrNotFound, id)
				}
				var report analysis.Report
				if err := json.Unmarshal(snapshot.ReportJSON, &report); err != nil {
					return fmt.Errorf("failed to decode report %s: %w", id, err)
				}
				return writeJSON(out, engine.StoredReport{ID: snapshot.ID, CreatedAt: snapshot.CreatedAt, Report: &report})

			case history > 0:
				snapshots, err := db.Reports().List(ctx, col.ID, history)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tCARDS\tINTERACTIONS\tSCORE")
				for _, s := range snapshots {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\n",
						s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.NodeCount, s.EdgeCount, s.SynergyScore)
				}
				return tw.Flush()
			}

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			stored, err := svc.LatestReport(ctx, col.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no stored report for %s; run analyze first", col.Name)
			}
			if err != nil {
				return err
			}
			return writeJSON(out, stored)
		},
	}

	f := cmd.Flags()
	f.StringVar(&catalog, "catalog", "", "Scryfall card list used to resolve deck list names")
	f.IntVar(&history, "history", 0, "list up to this many stored snapshots")
	f.StringVar(&id, "id", "", "print the snapshot with this ID")
	return cmd
}
