package console

import (
	"context"
	"fmt"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// Create stores a new type and reloads.
func (s *Session) Create(ctx context.Context, req store.CreateRequest) (int64, error) {
	id, err := s.store.Create(ctx, req)
	s.recorder.ObserveEdit("create", err)
	if err != nil {
		return 0, err
	}
	return id, s.Reload(ctx)
}

// Update checks the new parent against the current forest, stores the change and
// reloads. The store repeats the check against its own data.
func (s *Session) Update(ctx context.Context, req store.UpdateRequest) error {
	err := s.update(ctx, req)
	s.recorder.ObserveEdit("update", err)
	if err != nil {
		return err
	}
	return s.Reload(ctx)
}

func (s *Session) update(ctx context.Context, req store.UpdateRequest) error {
	if err := s.checkParent(req.ID, req.ParentID); err != nil {
		s.logger.WithType(req.ID).Warnw("Rejected parent", "parent_id", req.ParentID, "error", err)
		return err
	}
	return s.store.Update(ctx, req)
}

// checkParent reports ErrInvalidParent when parentID is inside id's subtree and
// store.ErrNotFound when id is not in the forest.
func (s *Session) checkParent(id, parentID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := taxonomy.Find(s.forest, id); !ok {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, id)
	}
	if parentID == 0 {
		return nil
	}
	if _, ok := taxonomy.Find(taxonomy.ParentCandidates(s.forest, id), parentID); ok {
		return nil
	}
	if _, ok := taxonomy.Find(s.forest, parentID); !ok {
		// Unknown parents are stored as-is and show up as roots.
		return nil
	}
	return fmt.Errorf("%w: %d under %d", ErrInvalidParent, id, parentID)
}

// Save creates rec when it is a draft and updates it otherwise. Changing the type
// key of an existing record is rejected with ErrTypeKeyImmutable.
func (s *Session) Save(ctx context.Context, rec taxonomy.Record) (int64, error) {
	if rec.IsDraft() {
		return s.Create(ctx, store.CreateRequest{
			Name:     rec.Name,
			TypeKey:  rec.TypeKey,
			ParentID: rec.ParentID,
			Status:   rec.Status,
			Remark:   rec.Remark,
		})
	}

	if current, ok := s.Select(rec.ID); ok && rec.TypeKey != "" && rec.TypeKey != current.Value {
		err := fmt.Errorf("%w: %q -> %q", ErrTypeKeyImmutable, current.Value, rec.TypeKey)
		s.recorder.ObserveEdit("update", err)
		return 0, err
	}

	return rec.ID, s.Update(ctx, store.UpdateRequest{
		ID:       rec.ID,
		Name:     rec.Name,
		ParentID: rec.ParentID,
		Status:   rec.Status,
		Remark:   rec.Remark,
	})
}

// Delete removes ids and reloads.
func (s *Session) Delete(ctx context.Context, ids []int64) (int64, error) {
	deleted, err := s.store.Delete(ctx, ids)
	s.recorder.ObserveEdit("delete", err)
	if err != nil {
		return 0, err
	}
	return deleted, s.Reload(ctx)
}
