package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRecords is the status/region example used across the package tests.
func sampleRecords() []Record {
	return []Record{
		{ID: 1, Name: "Status", TypeKey: "status", ParentID: 0},
		{ID: 2, Name: "Enabled", TypeKey: "status.enabled", ParentID: 1},
		{ID: 3, Name: "Region", TypeKey: "region", ParentID: 0},
	}
}

// deepRecords builds:
//
//	1 Asset
//	├── 2 Coin
//	│   ├── 4 Stablecoin
//	│   └── 5 Token
//	└── 3 Fiat
//	6 KYC
//	└── 7 Document
//	    └── 8 Passport
func deepRecords() []Record {
	return []Record{
		{ID: 1, Name: "Asset", TypeKey: "asset"},
		{ID: 2, Name: "Coin", TypeKey: "asset.coin", ParentID: 1},
		{ID: 3, Name: "Fiat", TypeKey: "asset.fiat", ParentID: 1},
		{ID: 4, Name: "Stablecoin", TypeKey: "asset.coin.stable", ParentID: 2},
		{ID: 5, Name: "Token", TypeKey: "asset.coin.token", ParentID: 2},
		{ID: 6, Name: "KYC", TypeKey: "kyc"},
		{ID: 7, Name: "Document", TypeKey: "kyc.document", ParentID: 6},
		{ID: 8, Name: "Passport", TypeKey: "kyc.document.passport", ParentID: 7},
	}
}

func TestBuild_SampleScenario(t *testing.T) {
	forest := BuildForest(sampleRecords())

	require.Len(t, forest, 2)
	assert.Equal(t, int64(1), forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, int64(2), forest[0].Children[0].ID)
	assert.Nil(t, forest[0].Children[0].Children)

	assert.Equal(t, int64(3), forest[1].ID)
	assert.Nil(t, forest[1].Children, "leaf must omit children rather than hold an empty slice")
}

func TestBuild_EmptyInput(t *testing.T) {
	forest := BuildForest(nil)
	assert.NotNil(t, forest)
	assert.Len(t, forest, 0)

	forest = BuildForest([]Record{})
	assert.Len(t, forest, 0)
}

func TestBuild_CopiesAllFields(t *testing.T) {
	records := []Record{
		{ID: 9, Name: "Channel", TypeKey: "channel", Status: StatusDisabled, Remark: "legacy"},
	}
	forest := BuildForest(records)

	require.Len(t, forest, 1)
	assert.Equal(t, records[0], forest[0].Record)
}

func TestBuild_PreservesInputOrder(t *testing.T) {
	records := []Record{
		{ID: 10, Name: "Zulu", ParentID: 0},
		{ID: 11, Name: "Yankee child b", ParentID: 12},
		{ID: 12, Name: "Yankee", ParentID: 0},
		{ID: 13, Name: "Yankee child a", ParentID: 12},
		{ID: 14, Name: "Alpha", ParentID: 0},
	}
	forest := BuildForest(records)

	require.Len(t, forest, 3)
	assert.Equal(t, []int64{10, 12, 14}, []int64{forest[0].ID, forest[1].ID, forest[2].ID})
	require.Len(t, forest[1].Children, 2)
	assert.Equal(t, int64(11), forest[1].Children[0].ID, "children follow list order, not name order")
	assert.Equal(t, int64(13), forest[1].Children[1].ID)
}

func TestBuild_ChildBeforeParentInList(t *testing.T) {
	records := []Record{
		{ID: 3, Name: "Grandchild", ParentID: 2},
		{ID: 2, Name: "Child", ParentID: 1},
		{ID: 1, Name: "Root"},
	}
	forest := BuildForest(records)

	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, int64(3), forest[0].Children[0].Children[0].ID)
}

func TestBuild_DanglingParentBecomesRoot(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "Orphan", ParentID: 99},
		{ID: 3, Name: "Orphan child", ParentID: 2},
	}
	builder := NewBuilder(records)
	forest := builder.Build()

	require.Len(t, forest, 2)
	assert.Equal(t, int64(2), forest[1].ID)
	require.Len(t, forest[1].Children, 1)
	assert.Equal(t, int64(3), forest[1].Children[0].ID)
	assert.Nil(t, builder.Cycles(), "a dangling parent is not a cycle")
}

func TestBuild_NestedRelations(t *testing.T) {
	forest := BuildForest(deepRecords())

	require.Len(t, forest, 2)
	stats := Stats(forest)
	assert.Equal(t, 8, stats.Nodes)
	assert.Equal(t, 2, stats.Roots)
	assert.Equal(t, 4, stats.Leaves)
	assert.Equal(t, 3, stats.MaxDepth)

	passport, ok := Find(forest, 8)
	require.True(t, ok)
	assert.Equal(t, "kyc.document.passport", passport.TypeKey)
}

func TestBuild_DraftRecords(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "Root"},
		{Name: "Draft under root", ParentID: 1},
		{Name: "Draft root"},
	}
	forest := BuildForest(records)

	require.Len(t, forest, 2)
	require.Len(t, forest[0].Children, 1)
	assert.True(t, forest[0].Children[0].IsDraft())
	assert.Equal(t, "Draft root", forest[1].Name)
}

func TestBuild_DuplicateIDFirstWins(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "First"},
		{ID: 1, Name: "Second"},
		{ID: 2, Name: "Child", ParentID: 1},
	}
	forest := BuildForest(records)

	assert.Equal(t, []int64{1, 2}, forest.IDs())
	assert.Equal(t, "First", forest[0].Name)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "A", ParentID: 2},
		{ID: 2, Name: "B", ParentID: 1},
	}
	snapshot := append([]Record(nil), records...)

	BuildForest(records)
	assert.Equal(t, snapshot, records)
}

func TestBuild_SelfParentIsPromoted(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "Loop", ParentID: 1},
		{ID: 2, Name: "Under loop", ParentID: 1},
	}
	builder := NewBuilder(records)
	forest := builder.Build()

	require.Len(t, forest, 1)
	assert.Equal(t, int64(1), forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, int64(2), forest[0].Children[0].ID)

	cycles := builder.Cycles()
	require.NotNil(t, cycles)
	assert.Equal(t, []int64{1}, cycles.Promoted)
	assert.Equal(t, []int64{1, 1}, cycles.CyclePath)
}

func TestBuild_CycleKeepsEveryID(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "Root"},
		{ID: 2, Name: "A", ParentID: 4},
		{ID: 3, Name: "B", ParentID: 2},
		{ID: 4, Name: "C", ParentID: 3},
		{ID: 5, Name: "Hangs below cycle", ParentID: 3},
	}
	builder := NewBuilder(records)
	forest := builder.Build()

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, forest.IDs())
	require.Len(t, forest, 2)
	assert.Equal(t, int64(2), forest[1].ID, "first cycle member in list order is promoted")

	cycles := builder.Cycles()
	require.NotNil(t, cycles)
	assert.Equal(t, []int64{2}, cycles.Promoted)
	assert.Equal(t, []int64{2, 3, 4, 2}, cycles.CyclePath)
	assert.Equal(t, []int64{2, 3, 4, 5}, cycles.UnprocessedIDs)
	assert.Equal(t, []int64{2, 3, 4}, cycles.CycleParticipants)
	assert.Equal(t, []int64{5}, cycles.Blocked())
}

func TestBuild_TwoCycles(t *testing.T) {
	records := []Record{
		{ID: 1, Name: "A", ParentID: 2},
		{ID: 2, Name: "B", ParentID: 1},
		{ID: 3, Name: "C", ParentID: 4},
		{ID: 4, Name: "D", ParentID: 3},
	}
	builder := NewBuilder(records)
	forest := builder.Build()

	assert.Len(t, forest, 2)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, forest.IDs())
	assert.Equal(t, []int64{1, 3}, builder.Cycles().Promoted)
	assert.Len(t, builder.Cycles().Cycles, 2)
}

func TestBuild_RebuildResetsCycles(t *testing.T) {
	builder := NewBuilder([]Record{{ID: 1, ParentID: 1}})
	builder.Build()
	require.NotNil(t, builder.Cycles())

	builder.records = sampleRecords()
	builder.Build()
	assert.Nil(t, builder.Cycles())
}

func TestForestRecords_RoundTrip(t *testing.T) {
	forest := BuildForest(deepRecords())
	rebuilt := BuildForest(forest.Records())

	assert.Equal(t, forest.IDs(), rebuilt.IDs())
	assert.Equal(t, 8, rebuilt.Len())
}

func TestWalk_StopsEarly(t *testing.T) {
	forest := BuildForest(deepRecords())

	var visited []int64
	Walk(forest, func(n *Node, depth int) bool {
		visited = append(visited, n.ID)
		return n.ID != 4
	})
	assert.Equal(t, []int64{1, 2, 4}, visited)
}

func TestWalk_Depths(t *testing.T) {
	forest := BuildForest(deepRecords())

	depths := make(map[int64]int)
	Walk(forest, func(n *Node, depth int) bool {
		depths[n.ID] = depth
		return true
	})
	assert.Equal(t, map[int64]int{1: 0, 2: 1, 3: 1, 4: 2, 5: 2, 6: 0, 7: 1, 8: 2}, depths)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "enabled", StatusEnabled.String())
	assert.Equal(t, "disabled", StatusDisabled.String())
}
