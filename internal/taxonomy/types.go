// Package taxonomy provides the dictionary-type tree engine: building a forest from
// flat parent-referencing records and deriving the read-only views an editor needs.
//
// Every function in this package is pure. Inputs are never mutated; derived forests
// share no *Node values with the forest they were computed from.
package taxonomy

// Status is the enabled/disabled flag of a dictionary type.
type Status int

const (
	StatusEnabled  Status = 0
	StatusDisabled Status = 1
)

// String returns "enabled" or "disabled".
func (s Status) String() string {
	if s == StatusDisabled {
		return "disabled"
	}
	return "enabled"
}

// Record is one dictionary type as received from the list endpoint.
type Record struct {
	ID       int64  `json:"id,omitempty" yaml:"id,omitempty"` // 0 for an unsaved draft
	Name     string `json:"name" yaml:"name"`
	TypeKey  string `json:"typeKey" yaml:"type_key"`
	ParentID int64  `json:"parentId" yaml:"parent_id"` // 0 or unresolvable means root
	Status   Status `json:"status" yaml:"status"`
	Remark   string `json:"remark,omitempty" yaml:"remark,omitempty"`
}

// IsDraft reports whether the record has not been persisted yet.
func (r Record) IsDraft() bool {
	return r.ID == 0
}

// Node is a Record in tree form. Children is nil for a leaf, never an empty slice.
type Node struct {
	Record
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren returns true if the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// shallowCopy returns a copy of n without children.
func (n *Node) shallowCopy() *Node {
	return &Node{Record: n.Record}
}

// Forest is an ordered sequence of root nodes.
type Forest []*Node

// Records flattens the forest back into records in pre-order.
func (f Forest) Records() []Record {
	var out []Record
	Walk(f, func(n *Node, _ int) bool {
		out = append(out, n.Record)
		return true
	})
	return out
}

// IDs returns every node id in pre-order.
func (f Forest) IDs() []int64 {
	var ids []int64
	Walk(f, func(n *Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Len returns the total number of nodes in the forest.
func (f Forest) Len() int {
	count := 0
	Walk(f, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Walk visits every node in pre-order, parents before their descendants and siblings
// in order. depth is 0 for roots. Returning false from fn stops the walk.
//
// The traversal keeps its own stack, so deep forests do not grow the call stack.
func Walk(f Forest, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}

	stack := make([]frame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: f[i]})
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.node == nil {
			continue
		}
		if !fn(top.node, top.depth) {
			return
		}

		children := top.node.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], depth: top.depth + 1})
		}
	}
}

// ForestStats summarises the shape of a forest.
type ForestStats struct {
	Nodes    int `json:"nodes"`
	Roots    int `json:"roots"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"maxDepth"` // 1 for a forest of bare roots, 0 when empty
}

// Stats computes node, root and leaf counts and the maximum depth.
func Stats(f Forest) ForestStats {
	stats := ForestStats{Roots: len(f)}
	Walk(f, func(n *Node, depth int) bool {
		stats.Nodes++
		if !n.HasChildren() {
			stats.Leaves++
		}
		if depth+1 > stats.MaxDepth {
			stats.MaxDepth = depth + 1
		}
		return true
	})
	return stats
}
