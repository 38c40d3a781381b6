package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/store"
)

var parentsID int64

var parentsCmd = &cobra.Command{
	Use:   "parents",
	Short: "List the valid new parents of a type",
	Long: `Parents lists the options an editor may pick as the new parent of a type:
a root entry followed by every type outside the edited type's own subtree.
Picking any of them can never create a cycle.

Example:
  dicttree parents --id 12`,
	RunE: runParents,
}

func init() {
	parentsCmd.Flags().Int64Var(&parentsID, "id", 0,
		"Id of the type being edited (required)")
	parentsCmd.MarkFlagRequired("id")
	addFormatFlag(parentsCmd)

	rootCmd.AddCommand(parentsCmd)
}

func runParents(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	env, err := openEnvironment(context.Background(), nil)
	if err != nil {
		return err
	}
	defer env.Close()

	sel, ok := env.session.Select(parentsID)
	if !ok {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, parentsID)
	}

	options := env.session.ParentOptions(parentsID)
	if jsonOutput() {
		return printJSON(options)
	}

	printHeader("Parent Options: %s", sel.Node.Name)
	optionTable(options)
	fmt.Fprintf(outputWriter, "\nTotal: %d option(s)\n", len(options))
	return nil
}
