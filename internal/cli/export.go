package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/seers-orb/internal/mtga/collection"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		catalog string
		output  string
		deck    bool
	)

	cmd := &cobra.Command{
		Use:   "export <collection>",
		Short: "Export the synergy graph as JSON for visualization",
		Long: `Export builds the collection's graph, stored edits included, and writes the
nodes, edges and statistics as JSON.

With --deck the collection itself is written as an Arena deck list instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := a.loadCollection(args[0], catalog)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if deck {
				_, err := io.WriteString(w, collection.ExportText(col))
				return err
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			g, err := svc.BuildGraph(cmd.Context(), col)
			if err != nil {
				return err
			}
			return writeJSON(w, g.Export())
		},
	}

	f := cmd.Flags()
	f.StringVar(&catalog, "catalog", "", "Scryfall card list used to resolve deck list names")
	f.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	f.BoolVar(&deck, "deck", false, "write the collection as an Arena deck list")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
