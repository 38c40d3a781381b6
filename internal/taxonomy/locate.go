package taxonomy

// Find returns the first node with the given id in pre-order, or false when absent.
func Find(f Forest, id int64) (*Node, bool) {
	var found *Node
	Walk(f, func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindByTypeKey returns the first node with the given type key in pre-order.
func FindByTypeKey(f Forest, typeKey string) (*Node, bool) {
	var found *Node
	Walk(f, func(n *Node, _ int) bool {
		if n.TypeKey == typeKey {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Label returns the display name of id, or "" when it is not in the forest.
func Label(f Forest, id int64) string {
	if n, ok := Find(f, id); ok {
		return n.Name
	}
	return ""
}

// Selection is what a selection control reports: the stable type key to store as a
// foreign key, and the matched node for contextual display.
type Selection struct {
	Value string `json:"value"`
	Node  *Node  `json:"node"`
}

// Select resolves a selected id into a Selection.
func Select(f Forest, id int64) (Selection, bool) {
	n, ok := Find(f, id)
	if !ok {
		return Selection{}, false
	}
	return Selection{Value: n.TypeKey, Node: n}, true
}

// DefaultTypeKey returns the type key of the selected category, used to pre-fill a
// new dictionary entry. It falls back to "" when nothing is selected or found.
func DefaultTypeKey(f Forest, selectedID int64) string {
	if selectedID == 0 {
		return ""
	}
	if n, ok := Find(f, selectedID); ok {
		return n.TypeKey
	}
	return ""
}

// Ancestors returns the ids on the path from a root down to id's parent, or false
// when id is not in the forest.
func Ancestors(f Forest, id int64) ([]int64, bool) {
	var path []int64
	found := false
	Walk(f, func(n *Node, depth int) bool {
		path = append(path[:depth], n.ID)
		if n.ID == id {
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil, false
	}
	return append([]int64(nil), path[:len(path)-1]...), true
}
