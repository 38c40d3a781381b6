package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
)

// Matcher reports whether a label contains a search term, ignoring case.
// Comparison uses Unicode case folding rather than ASCII lowering.
type Matcher struct {
	folded string
	caser  cases.Caser
}

// NewMatcher prepares term for repeated matching. Surrounding whitespace is trimmed.
func NewMatcher(term string) *Matcher {
	caser := cases.Fold()
	return &Matcher{
		folded: caser.String(strings.TrimSpace(term)),
		caser:  caser,
	}
}

// Empty returns true if the term matches everything.
func (m *Matcher) Empty() bool {
	return m.folded == ""
}

// Match returns true if label contains the term.
func (m *Matcher) Match(label string) bool {
	if m.folded == "" {
		return true
	}
	return strings.Contains(m.caser.String(label), m.folded)
}

// Search returns the forest restricted to nodes whose name contains term and every
// ancestor of such a node. A kept node carries only its kept children; branches with
// no match anywhere are pruned. An empty or blank term returns a copy of f, and a
// term that matches nothing returns an empty forest.
func Search(f Forest, term string) Forest {
	m := NewMatcher(term)
	if m.Empty() {
		return Clone(f)
	}
	return searchLevel(f, m)
}

func searchLevel(nodes []*Node, m *Matcher) []*Node {
	out := make([]*Node, 0)
	for _, n := range nodes {
		if n == nil {
			continue
		}

		var children []*Node
		if n.HasChildren() {
			children = searchLevel(n.Children, m)
		}

		if len(children) == 0 && !m.Match(n.Name) {
			continue
		}

		clone := n.shallowCopy()
		if len(children) > 0 {
			clone.Children = children
		}
		out = append(out, clone)
	}
	return out
}

// Matches returns the ids of nodes whose own name contains term, in pre-order.
// Ancestors kept only for context are not included.
func Matches(f Forest, term string) []int64 {
	m := NewMatcher(term)
	if m.Empty() {
		return nil
	}

	var ids []int64
	Walk(f, func(n *Node, _ int) bool {
		if m.Match(n.Name) {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}
