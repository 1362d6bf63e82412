package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/seers-orb/internal/mtga/synergy"
	"github.com/ramonehamilton/seers-orb/internal/storage/models"
)

func newInteractionCommand(a *app) *cobra.Command {
	var catalog string

	cmd := &cobra.Command{
		Use:     "interaction",
		Aliases: []string{"edge"},
		Short:   "Add, remove and list user graph edits",
		Long: `Graph edits are stored per collection and replayed on every analysis, after
interaction detection. Cards are named by ID or by card name.`,
	}
	cmd.PersistentFlags().StringVar(&catalog, "catalog", "", "Scryfall card list used to resolve deck list names")

	cmd.AddCommand(
		newInteractionAddCommand(a, &catalog),
		newInteractionRemoveCommand(a, &catalog),
		newInteractionListCommand(a, &catalog),
		newInteractionResetCommand(a, &catalog),
		newInteractionTypesCommand(),
	)
	return cmd
}

func newInteractionAddCommand(a *app, catalog *string) *cobra.Command {
	var (
		weight      float64
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <collection> <source> <target> <type>",
		Short: "Add a custom interaction between two cards",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := a.loadCollection(args[0], *catalog)
			if err != nil {
				return err
			}
			source, err := resolveCard(col, args[1])
			if err != nil {
				return err
			}
			target, err := resolveCard(col, args[2])
			if err != nil {
				return err
			}
			t, err := synergy.ParseInteractionType(args[3])
			if err != nil {
				return err
			}

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			in := synergy.Interaction{
				SourceID:    source,
				TargetID:    target,
				Type:        t,
				Weight:      weight,
				Description: description,
			}
			if err := svc.AddCustomInteraction(ctx, col, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s -> %s (%.2f)\n", t, source, target, synergy.ClampWeight(weight))
			return nil
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", 0.5, "interaction strength, clamped to [0, 1]")
	cmd.Flags().StringVar(&description, "description", "", "why the cards interact")
	return cmd
}

func newInteractionRemoveCommand(a *app, catalog *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <collection> <card> <card>",
		Short: "Remove the interaction between two cards",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := a.loadCollection(args[0], *catalog)
			if err != nil {
				return err
			}
			first, err := resolveCard(col, args[1])
			if err != nil {
				return err
			}
			second, err := resolveCard(col, args[2])
			if err != nil {
				return err
			}

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			if err := svc.RemoveInteraction(ctx, col, first, second); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s - %s\n", first, second)
			return nil
		},
	}
}

func newInteractionListCommand(a *app, catalog *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <collection>",
		Short: "List stored graph edits in replay order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := a.loadCollection(args[0], *catalog)
			if err != nil {
				return err
			}
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			edits, err := svc.Edits(ctx, col.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(edits) == 0 {
				fmt.Fprintln(out, "no graph edits")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tSOURCE\tTARGET\tTYPE\tWEIGHT\tCREATED")
			for _, e := range edits {
				typ, weight := "-", "-"
				if e.Kind == models.EditKindAdd {
					typ, weight = e.InteractionType, fmt.Sprintf("%.2f", e.Weight)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Kind, e.SourceID, e.TargetID, typ, weight, e.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newInteractionResetCommand(a *app, catalog *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <collection>",
		Short: "Delete every stored graph edit of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := a.loadCollection(args[0], *catalog)
			if err != nil {
				return err
			}
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			n, err := svc.ResetEdits(ctx, col.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d graph edits\n", n)
			return nil
		},
	}
}

func newInteractionTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List interaction types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLABEL\tCOLOR")
			for _, t := range synergy.AllInteractionTypes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t, t.Label(), t.Color())
			}
			return tw.Flush()
		},
	}
}
