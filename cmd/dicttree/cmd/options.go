package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var optionsSearch string

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List types as flattened selection options",
	Long: `Options flattens the forest in pre-order into the entries of a selection
control. Each label is indented once per depth level; the value is the type
key stored by referencing records.

Example:
  dicttree options --search bank --format json`,
	RunE: runOptions,
}

func init() {
	optionsCmd.Flags().StringVarP(&optionsSearch, "search", "s", "",
		"Keep options whose name contains this text")
	addFormatFlag(optionsCmd)

	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	env, err := openEnvironment(context.Background(), nil)
	if err != nil {
		return err
	}
	defer env.Close()

	options := env.session.OptionsFor(optionsSearch)
	if jsonOutput() {
		return printJSON(options)
	}

	printHeader("Type Options")
	if len(options) == 0 {
		fmt.Fprintln(outputWriter, "  No options")
		return nil
	}
	optionTable(options)
	fmt.Fprintf(outputWriter, "\nTotal: %d option(s)\n", len(options))
	return nil
}
