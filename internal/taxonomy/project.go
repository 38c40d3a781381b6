package taxonomy

import "strings"

// DefaultIndent is the per-level prefix used when no indent is configured.
const DefaultIndent = "  "

// Option is one entry of a flat selection list.
type Option struct {
	Label string `json:"label"` // indent repeated per depth + name
	Value string `json:"value"` // type key
	ID    int64  `json:"id"`
	Depth int    `json:"depth"`
}

// Project flattens the forest into options in pre-order, so a parent always
// precedes all of its descendants. Each label is indent repeated once per depth
// level followed by the name. An empty indent falls back to DefaultIndent.
func Project(f Forest, indent string) []Option {
	if indent == "" {
		indent = DefaultIndent
	}

	options := make([]Option, 0)
	Walk(f, func(n *Node, depth int) bool {
		options = append(options, Option{
			Label: strings.Repeat(indent, depth) + n.Name,
			Value: n.TypeKey,
			ID:    n.ID,
			Depth: depth,
		})
		return true
	})
	return options
}

// FilterOptions keeps options whose name contains term, ignoring case and the
// indent prefix. Order is preserved; an empty term keeps everything.
func FilterOptions(options []Option, indent, term string) []Option {
	m := NewMatcher(term)
	if m.Empty() {
		return options
	}
	if indent == "" {
		indent = DefaultIndent
	}

	out := make([]Option, 0)
	for _, opt := range options {
		name := strings.TrimPrefix(opt.Label, strings.Repeat(indent, opt.Depth))
		if m.Match(name) {
			out = append(out, opt)
		}
	}
	return out
}
