package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and stored records",
	Long: `Validate checks the configuration file, connects to the store and
inspects the stored records.

Checks performed:
  - Configuration syntax and required fields
  - Store connectivity
  - MySQL table existence, InnoDB engine and required columns
  - Parent cycles (fatal)
  - Parents that do not exist (warning, shown as roots)
  - Duplicate ids (warning, later records ignored)
  - Duplicate type keys (warning)

Example:
  dicttree validate --config dicttree.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	env, err := connectEnvironment(ctx, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	env.log.Info("Starting validation checks...")

	if env.db != nil {
		checker, err := store.NewPreflightChecker(env.db.DB, env.cfg.Database.Database, env.cfg.Store.Table, env.log)
		if err != nil {
			return fmt.Errorf("failed to create preflight checker: %w", err)
		}
		if err := checker.RunAllChecks(ctx); err != nil {
			fmt.Fprintf(outputWriter, "❌ Preflight checks failed: %v\n", err)
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(outputWriter, "✅ Table checks passed")
	}

	if err := env.session.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	records := env.session.Records()
	stats := env.session.Stats()

	fmt.Fprintf(outputWriter, "\n=== Record Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(outputWriter, "Store: %s\n", env.cfg.Store.Driver)
	fmt.Fprintf(outputWriter, "Records: %d (%d root(s), depth %d)\n\n", len(records), stats.Roots, stats.MaxDepth)

	hasErrors := false

	if cycles := env.session.Cycles(); cycles != nil {
		hasErrors = true
		fmt.Fprintf(outputWriter, "❌ Cycle detected: %d type(s) cannot reach a root\n", len(cycles.UnprocessedIDs))
		for _, cycle := range cycles.Cycles {
			fmt.Fprintf(outputWriter, "   • %s\n", cyclePath(env.session.Forest(), cycle))
		}
	} else {
		fmt.Fprintln(outputWriter, "✅ No parent cycles")
	}

	if dangling := taxonomy.DanglingParents(records); len(dangling) > 0 {
		fmt.Fprintf(outputWriter, "⚠️  %d type(s) reference a missing parent\n", len(dangling))
		for _, rec := range dangling {
			fmt.Fprintf(outputWriter, "   • #%d %s -> parent %d\n", rec.ID, rec.Name, rec.ParentID)
		}
	}

	if ids := taxonomy.DuplicateIDs(records); len(ids) > 0 {
		fmt.Fprintf(outputWriter, "⚠️  Duplicate ids: %v\n", ids)
	}

	dups := taxonomy.DuplicateTypeKeys(records)
	for _, key := range dups.Keys() {
		ids, _ := dups.Get(key)
		fmt.Fprintf(outputWriter, "⚠️  Type key %q used by ids %v\n", key, ids)
	}

	if hasErrors {
		return fmt.Errorf("validation failed: parent cycles found")
	}

	fmt.Fprintln(outputWriter, "\n=== Validation Complete ===")
	return nil
}

// cyclePath renders a cycle as "A (#1) -> B (#2) -> A (#1)".
func cyclePath(forest taxonomy.Forest, cycle []int64) string {
	parts := make([]string, 0, len(cycle))
	for _, id := range cycle {
		parts = append(parts, fmt.Sprintf("%s (#%d)", taxonomy.Label(forest, id), id))
	}
	return strings.Join(parts, " -> ")
}
