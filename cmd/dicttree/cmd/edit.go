package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/database"
	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var (
	editID      int64
	editName    string
	editTypeKey string
	editParent  int64
	editStatus  int
	editRemark  string
	deleteIDs   []int64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a type",
	Long: `Create stores a new type. Without --parent it is placed at the root.

Example:
  dicttree create --name Loans --type-key loan --parent 2`,
	RunE: runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a type",
	Long: `Update rewrites the name, parent, status or remark of a type. Flags that are
not given keep their current value. The type key cannot be changed.

A new parent inside the type's own subtree is rejected, since it would
create a cycle.

Example:
  dicttree update --id 3 --parent 4`,
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete types",
	Long: `Delete removes the given types. Their children are kept and show up as
roots until they are re-parented.

Example:
  dicttree delete --id 3,4`,
	RunE: runDelete,
}

func init() {
	createCmd.Flags().StringVar(&editName, "name", "", "Display name (required)")
	createCmd.Flags().StringVar(&editTypeKey, "type-key", "", "Stable type key (required)")
	createCmd.Flags().Int64Var(&editParent, "parent", 0, "Parent id (0 for root)")
	createCmd.Flags().IntVar(&editStatus, "status", 0, "Status (0 enabled, 1 disabled)")
	createCmd.Flags().StringVar(&editRemark, "remark", "", "Free-form remark")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("type-key")

	updateCmd.Flags().Int64Var(&editID, "id", 0, "Id of the type to update (required)")
	updateCmd.Flags().StringVar(&editName, "name", "", "New display name")
	updateCmd.Flags().Int64Var(&editParent, "parent", 0, "New parent id (0 for root)")
	updateCmd.Flags().IntVar(&editStatus, "status", 0, "New status (0 enabled, 1 disabled)")
	updateCmd.Flags().StringVar(&editRemark, "remark", "", "New remark")
	updateCmd.MarkFlagRequired("id")

	deleteCmd.Flags().Int64SliceVar(&deleteIDs, "id", nil, "Comma-separated ids to delete (required)")
	deleteCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(createCmd, updateCmd, deleteCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := database.SetupSignalHandler()
	env, err := openEnvironment(ctx, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	id, err := env.session.Create(ctx, store.CreateRequest{
		Name:     editName,
		TypeKey:  editTypeKey,
		ParentID: editParent,
		Status:   taxonomy.Status(editStatus),
		Remark:   editRemark,
	})
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	cmd.Printf("Created type #%d (%s)\n", id, editTypeKey)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := database.SetupSignalHandler()
	env, err := openEnvironment(ctx, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	sel, ok := env.session.Select(editID)
	if !ok {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, editID)
	}

	req := updateRequest(cmd, sel.Node.Record)
	if err := env.session.Update(ctx, req); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	cmd.Printf("Updated type #%d (%s)\n", req.ID, sel.Value)
	return nil
}

// updateRequest starts from current and applies only the flags that were set.
func updateRequest(cmd *cobra.Command, current taxonomy.Record) store.UpdateRequest {
	req := store.UpdateRequest{
		ID:       current.ID,
		Name:     current.Name,
		ParentID: current.ParentID,
		Status:   current.Status,
		Remark:   current.Remark,
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		req.Name = editName
	}
	if flags.Changed("parent") {
		req.ParentID = editParent
	}
	if flags.Changed("status") {
		req.Status = taxonomy.Status(editStatus)
	}
	if flags.Changed("remark") {
		req.Remark = editRemark
	}
	return req
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := database.SetupSignalHandler()
	env, err := openEnvironment(ctx, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	deleted, err := env.session.Delete(ctx, deleteIDs)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %d type(s)\n", deleted)
	return nil
}
