package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/console"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var (
	treeSearch    string
	treeExpandAll bool
	treeExpand    []int64
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the type forest",
	Long: `Tree builds the forest from the stored records and prints the rows a tree
widget would show. Only roots are open by default; use --expand to open
individual branches or --expand-all to open every branch.

A search keeps every matching type together with its ancestors and opens
every remaining branch.

Example:
  dicttree tree --search loan
  dicttree tree --expand 1,2 --file types.yaml`,
	RunE: runTree,
}

func init() {
	treeCmd.Flags().StringVarP(&treeSearch, "search", "s", "",
		"Keep types whose name contains this text, plus their ancestors")
	treeCmd.Flags().BoolVar(&treeExpandAll, "expand-all", false,
		"Expand every branch")
	treeCmd.Flags().Int64SliceVar(&treeExpand, "expand", nil,
		"Comma-separated ids of branches to expand")
	addFormatFlag(treeCmd)

	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	env, err := openEnvironment(context.Background(), nil)
	if err != nil {
		return err
	}
	defer env.Close()

	session := env.session
	session.SetSearch(treeSearch)

	if jsonOutput() {
		return printJSON(session.View())
	}

	if treeExpandAll {
		session.ExpandAll()
	} else {
		expanded := make(map[int64]bool)
		for _, id := range treeExpand {
			if !expanded[id] {
				expanded[id] = true
				session.Toggle(id)
			}
		}
	}

	printTree(session)
	return nil
}

// printTree prints the visible rows with aligned key and id columns.
func printTree(session *console.Session) {
	rows := session.Rows()

	printHeader("Type Tree")
	if len(rows) == 0 {
		if session.SearchTerm() != "" {
			fmt.Fprintf(outputWriter, "  No types match %q\n", session.SearchTerm())
		} else {
			fmt.Fprintln(outputWriter, "  No types defined")
		}
		return
	}

	nameWidth, keyWidth := 0, 0
	for _, row := range rows {
		nameWidth = max(nameWidth, row.Depth*2+2+visualWidth(row.Node.Name))
		keyWidth = max(keyWidth, visualWidth(row.Node.TypeKey))
	}

	for _, row := range rows {
		prefix := strings.Repeat("  ", row.Depth) + marker(row) + " "
		pad := nameWidth - visualWidth(prefix) - visualWidth(row.Node.Name)
		fmt.Fprintf(outputWriter, "  %s%s%s  %s  %s\n",
			prefix,
			styleName(row.Node.Record),
			strings.Repeat(" ", max(pad, 0)),
			styleKey(padRight(row.Node.TypeKey, keyWidth)),
			color.FgGray.Sprintf("#%d", row.Node.ID))
	}

	fmt.Fprintln(outputWriter)
	stats := session.Stats()
	fmt.Fprintf(outputWriter, "Total: %d type(s), %d root(s), depth %d\n", stats.Nodes, stats.Roots, stats.MaxDepth)
	if term := session.SearchTerm(); term != "" {
		fmt.Fprintf(outputWriter, "Search %q: %d type(s) shown\n", term, len(rows))
	}
}

func marker(row taxonomy.Row) string {
	switch {
	case !row.Node.HasChildren():
		return "•"
	case row.Expanded:
		return "▾"
	default:
		return "▸"
	}
}
