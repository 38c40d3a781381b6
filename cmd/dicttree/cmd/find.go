package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var (
	findID      int64
	findTypeKey string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Look up a single type",
	Long: `Find locates a type by id or by type key anywhere in the forest and prints
it with its ancestor path.

Example:
  dicttree find --id 7
  dicttree find --type-key loan`,
	RunE: runFind,
}

func init() {
	findCmd.Flags().Int64Var(&findID, "id", 0, "Type id")
	findCmd.Flags().StringVar(&findTypeKey, "type-key", "", "Type key")
	findCmd.MarkFlagsOneRequired("id", "type-key")
	findCmd.MarkFlagsMutuallyExclusive("id", "type-key")
	addFormatFlag(findCmd)

	rootCmd.AddCommand(findCmd)
}

// findResult is the JSON shape of find.
type findResult struct {
	taxonomy.Selection
	Path []int64 `json:"path"`
}

func runFind(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	env, err := openEnvironment(context.Background(), nil)
	if err != nil {
		return err
	}
	defer env.Close()

	forest := env.session.Forest()
	node, ok := lookup(forest)
	if !ok {
		if findTypeKey != "" {
			return fmt.Errorf("%w: type key %q", store.ErrNotFound, findTypeKey)
		}
		return fmt.Errorf("%w: id %d", store.ErrNotFound, findID)
	}

	path, _ := taxonomy.Ancestors(forest, node.ID)
	if path == nil {
		path = []int64{}
	}

	if jsonOutput() {
		return printJSON(findResult{
			Selection: taxonomy.Selection{Value: node.TypeKey, Node: node},
			Path:      path,
		})
	}

	labels := make([]string, 0, len(path)+1)
	for _, id := range path {
		labels = append(labels, taxonomy.Label(forest, id))
	}
	labels = append(labels, node.Name)

	printHeader("Type #%d", node.ID)
	fmt.Fprintf(outputWriter, "  Name:      %s\n", styleName(node.Record))
	fmt.Fprintf(outputWriter, "  Type Key:  %s\n", styleKey(node.TypeKey))
	fmt.Fprintf(outputWriter, "  Status:    %s\n", statusText(node.Status))
	fmt.Fprintf(outputWriter, "  Path:      %s\n", strings.Join(labels, " / "))
	fmt.Fprintf(outputWriter, "  Children:  %d\n", len(node.Children))
	if node.Remark != "" {
		fmt.Fprintf(outputWriter, "  Remark:    %s\n", node.Remark)
	}
	return nil
}

func lookup(forest taxonomy.Forest) (*taxonomy.Node, bool) {
	if findTypeKey != "" {
		return taxonomy.FindByTypeKey(forest, findTypeKey)
	}
	return taxonomy.Find(forest, findID)
}
