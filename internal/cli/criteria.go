package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/depvet/depvet/pkg/check"
)

// newCriteriaCmd creates the criteria command for inspecting the catalog.
func newCriteriaCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "criteria [number]",
		Short: "List the maintenance criteria, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := check.LoadCatalog()
			if err != nil {
				return err
			}

			selector := check.SelectorAll
			if len(args) == 1 {
				selector = args[0]
			}
			criteria, err := catalog.Select(selector)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(os.Stdout, criteria)
			}
			renderCriteria(criteria)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output criteria as JSON")
	return cmd
}
