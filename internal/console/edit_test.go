package console

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

func TestCreate(t *testing.T) {
	s, _, rec := newSession(t, deepRecords())

	id, err := s.Create(context.Background(), store.CreateRequest{Name: "Passport", TypeKey: "kyc.passport", ParentID: 5})
	require.NoError(t, err)

	node, ok := taxonomy.Find(s.Forest(), id)
	require.True(t, ok)
	assert.Equal(t, "Passport", node.Name)

	parent, _ := taxonomy.Find(s.Forest(), 5)
	assert.True(t, parent.HasChildren())
	assert.Equal(t, []editCall{{"create", nil}}, rec.edits)
	assert.Equal(t, 2, rec.rebuilds)
}

func TestCreate_StoreError(t *testing.T) {
	s, _, rec := newSession(t, deepRecords())

	_, err := s.Create(context.Background(), store.CreateRequest{Name: "No key"})
	require.Error(t, err)
	assert.Equal(t, 1, rec.rebuilds, "no reload after a failed create")
	require.Len(t, rec.edits, 1)
	assert.Error(t, rec.edits[0].err)
}

func TestUpdate_MovesType(t *testing.T) {
	s, st, _ := newSession(t, deepRecords())

	err := s.Update(context.Background(), store.UpdateRequest{ID: 3, Name: "Fiat", ParentID: 5})
	require.NoError(t, err)

	ancestors, ok := taxonomy.Ancestors(s.Forest(), 3)
	require.True(t, ok)
	assert.Equal(t, []int64{5}, ancestors)
	assert.Len(t, st.updates, 1)
}

func TestUpdate_InvalidParent(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		parentID int64
	}{
		{"under itself", 2, 2},
		{"under child", 1, 2},
		{"under grandchild", 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, st, rec := newSession(t, deepRecords())

			err := s.Update(context.Background(), store.UpdateRequest{ID: tt.id, Name: "X", ParentID: tt.parentID})
			assert.ErrorIs(t, err, ErrInvalidParent)
			assert.Empty(t, st.updates, "store must not be called")
			assert.Equal(t, "update", rec.edits[0].op)
		})
	}
}

func TestUpdate_ValidParents(t *testing.T) {
	s, _, _ := newSession(t, deepRecords())
	ctx := context.Background()

	assert.NoError(t, s.Update(ctx, store.UpdateRequest{ID: 4, Name: "Stablecoin", ParentID: 0}), "to root")
	assert.NoError(t, s.Update(ctx, store.UpdateRequest{ID: 2, Name: "Coin", ParentID: 5}), "to other tree")
	assert.NoError(t, s.Update(ctx, store.UpdateRequest{ID: 3, Name: "Fiat", ParentID: 77}), "unknown parent")
}

func TestUpdate_NotFound(t *testing.T) {
	s, st, _ := newSession(t, deepRecords())

	err := s.Update(context.Background(), store.UpdateRequest{ID: 99, Name: "Ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, st.updates)
}

func TestSave(t *testing.T) {
	s, st, _ := newSession(t, deepRecords())
	ctx := context.Background()

	t.Run("draft creates", func(t *testing.T) {
		id, err := s.Save(ctx, taxonomy.Record{Name: "Bond", TypeKey: "asset.bond", ParentID: 1})
		require.NoError(t, err)
		assert.NotZero(t, id)
		_, ok := taxonomy.FindByTypeKey(s.Forest(), "asset.bond")
		assert.True(t, ok)
	})

	t.Run("existing updates", func(t *testing.T) {
		id, err := s.Save(ctx, taxonomy.Record{ID: 3, Name: "Cash", TypeKey: "asset.fiat", ParentID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
		assert.Equal(t, "Cash", taxonomy.Label(s.Forest(), 3))
	})

	t.Run("empty key keeps the stored one", func(t *testing.T) {
		_, err := s.Save(ctx, taxonomy.Record{ID: 3, Name: "Cash", ParentID: 1})
		assert.NoError(t, err)
	})

	t.Run("changed key rejected", func(t *testing.T) {
		before := len(st.updates)
		_, err := s.Save(ctx, taxonomy.Record{ID: 3, Name: "Cash", TypeKey: "asset.cash", ParentID: 1})
		assert.ErrorIs(t, err, ErrTypeKeyImmutable)
		assert.Len(t, st.updates, before)
	})
}

func TestDelete(t *testing.T) {
	s, _, _ := newSession(t, deepRecords())

	deleted, err := s.Delete(context.Background(), []int64{2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// 4 lost its parent and is now a root.
	assert.Equal(t, []int64{1, 3, 4, 5}, s.Forest().IDs())
	assert.Len(t, s.Forest(), 3)
}
