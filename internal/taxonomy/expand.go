package taxonomy

import "github.com/elliotchance/orderedmap/v2"

// ExpandState is the UI-owned set of expanded node ids. It only looks at structure
// (presence of children), never at labels. ExpandAll recomputes the set from the
// forest it is given, so ids from an earlier forest never survive a rebuild.
//
// ExpandState is not safe for concurrent use; it belongs to a single UI session.
type ExpandState struct {
	ids *orderedmap.OrderedMap[int64, struct{}]
}

// NewExpandState returns an empty (fully collapsed) state.
func NewExpandState() *ExpandState {
	return &ExpandState{ids: orderedmap.NewOrderedMap[int64, struct{}]()}
}

// NewExpandStateFrom returns a state containing ids, in the given order.
func NewExpandStateFrom(ids []int64) *ExpandState {
	s := NewExpandState()
	for _, id := range ids {
		s.ids.Set(id, struct{}{})
	}
	return s
}

// Toggle expands id if it is collapsed and collapses it otherwise. It returns the
// new expanded state of id.
func (s *ExpandState) Toggle(id int64) bool {
	if _, ok := s.ids.Get(id); ok {
		s.ids.Delete(id)
		return false
	}
	s.ids.Set(id, struct{}{})
	return true
}

// ExpandAll replaces the set with the id of every node in f that has children.
func (s *ExpandState) ExpandAll(f Forest) {
	fresh := orderedmap.NewOrderedMap[int64, struct{}]()
	for _, id := range Branches(f) {
		fresh.Set(id, struct{}{})
	}
	s.ids = fresh
}

// CollapseAll clears the set.
func (s *ExpandState) CollapseAll() {
	s.ids = orderedmap.NewOrderedMap[int64, struct{}]()
}

// IsExpanded returns true if id is in the set.
func (s *ExpandState) IsExpanded(id int64) bool {
	_, ok := s.ids.Get(id)
	return ok
}

// IDs returns the expanded ids in the order they were added.
func (s *ExpandState) IDs() []int64 {
	return s.ids.Keys()
}

// Len returns the number of expanded ids.
func (s *ExpandState) Len() int {
	return s.ids.Len()
}

// Branches returns the id of every node that has at least one child, in pre-order.
func Branches(f Forest) []int64 {
	ids := make([]int64, 0)
	Walk(f, func(n *Node, _ int) bool {
		if n.HasChildren() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Row is one visible line of a tree widget.
type Row struct {
	Node     *Node
	Depth    int
	Expanded bool // only meaningful when Node has children
}

// VisibleRows returns the rows a tree widget shows for f: roots always, and the
// children of a node only when it is expanded in state. A nil state shows roots only.
func VisibleRows(f Forest, state *ExpandState) []Row {
	return appendVisible(make([]Row, 0, len(f)), f, state, 0)
}

func appendVisible(rows []Row, nodes []*Node, state *ExpandState, depth int) []Row {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		expanded := state != nil && n.HasChildren() && state.IsExpanded(n.ID)
		rows = append(rows, Row{Node: n, Depth: depth, Expanded: expanded})
		if expanded {
			rows = appendVisible(rows, n.Children, state, depth+1)
		}
	}
	return rows
}
