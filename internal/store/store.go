// Package store persists dictionary types. It is the list/create/update/delete
// collaborator the taxonomy engine rebuilds from.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var (
	// ErrNotFound is returned when an update targets an id that does not exist.
	ErrNotFound = errors.New("type not found")

	// ErrInvalidRequest wraps every request validation failure.
	ErrInvalidRequest = errors.New("invalid request")
)

// Store is the persistence boundary for dictionary types.
type Store interface {
	// List returns every record in the order the store keeps them.
	List(ctx context.Context) ([]taxonomy.Record, error)
	// Create persists a new type and returns its assigned id.
	Create(ctx context.Context, req CreateRequest) (int64, error)
	// Update rewrites the mutable fields of an existing type.
	Update(ctx context.Context, req UpdateRequest) error
	// Delete removes the given ids and returns how many existed.
	Delete(ctx context.Context, ids []int64) (int64, error)
}

// CreateRequest carries the fields of a new type. ParentID 0 places it at the root.
type CreateRequest struct {
	Name     string          `json:"name"`
	TypeKey  string          `json:"typeKey"`
	ParentID int64           `json:"parentId"`
	Status   taxonomy.Status `json:"status"`
	Remark   string          `json:"remark"`
}

// Validate checks required fields.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.TypeKey) == "" {
		return fmt.Errorf("%w: typeKey is required", ErrInvalidRequest)
	}
	return validateStatus(r.Status)
}

// UpdateRequest carries the new values of an existing type. The type key is not
// part of it: keys are fixed once created.
type UpdateRequest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	ParentID int64           `json:"parentId"`
	Status   taxonomy.Status `json:"status"`
	Remark   string          `json:"remark"`
}

// Validate checks required fields.
func (r UpdateRequest) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if r.ParentID == r.ID {
		return fmt.Errorf("%w: type %d cannot be its own parent", ErrInvalidRequest, r.ID)
	}
	return validateStatus(r.Status)
}

func validateStatus(s taxonomy.Status) error {
	if s != taxonomy.StatusEnabled && s != taxonomy.StatusDisabled {
		return fmt.Errorf("%w: status must be 0 (enabled) or 1 (disabled), got %d", ErrInvalidRequest, s)
	}
	return nil
}

// checkMove rejects an update whose new parent lies inside the moved type's
// subtree according to records, and an update of an unknown id.
func checkMove(records []taxonomy.Record, req UpdateRequest) error {
	found := false
	for _, rec := range records {
		if rec.ID == req.ID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrNotFound, req.ID)
	}

	if taxonomy.WouldCreateCycle(records, req.ID, req.ParentID) {
		return fmt.Errorf("%w: moving type %d under %d", taxonomy.ErrCycleDetected, req.ID, req.ParentID)
	}
	return nil
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
