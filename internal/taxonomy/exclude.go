package taxonomy

// ExcludeSubtree returns a copy of the forest without the node id and everything
// beneath it. It populates "choose a new parent" controls: a node's descendants are
// only reachable through the node itself, so dropping it where it is found removes
// the whole subtree and the node can never become its own ancestor.
//
// When id is 0 or not in the forest the result is an equal copy.
func ExcludeSubtree(f Forest, id int64) Forest {
	return copyLevel(f, func(n *Node) bool { return id != 0 && n.ID == id })
}

// ParentCandidates returns the forest of valid new parents for id. A draft (id 0)
// may be placed anywhere.
func ParentCandidates(f Forest, id int64) Forest {
	return ExcludeSubtree(f, id)
}

// Clone returns a deep copy of the forest.
func Clone(f Forest) Forest {
	return copyLevel(f, func(*Node) bool { return false })
}

// copyLevel copies nodes, dropping every node (with its subtree) for which drop
// returns true.
func copyLevel(nodes []*Node, drop func(*Node) bool) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || drop(n) {
			continue
		}
		clone := n.shallowCopy()
		if n.HasChildren() {
			if children := copyLevel(n.Children, drop); len(children) > 0 {
				clone.Children = children
			}
		}
		out = append(out, clone)
	}
	return out
}
