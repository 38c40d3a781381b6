package taxonomy

// Builder constructs a Forest from a flat, parent-referencing list of records.
type Builder struct {
	records []Record
	cycles  *CycleInfo
}

// NewBuilder creates a builder for the given records. The slice is not modified.
func NewBuilder(records []Record) *Builder {
	return &Builder{records: records}
}

// Build converts the records into a forest. It never fails:
//   - a record whose parent id is 0 or matches no record becomes a root
//   - roots and siblings keep the order of the input list
//   - a leaf has nil Children
//   - parent cycles are broken by promoting the first cycle member (input order) to
//     root, so every id still appears exactly once; see Cycles
//   - when an id occurs more than once only its first record is placed
func (b *Builder) Build() Forest {
	b.cycles = nil
	if len(b.records) == 0 {
		return Forest{}
	}

	// Pass 1: resolve parent ids against the id index.
	l := link(b.records)

	// Cycles would leave records unreachable from every root.
	b.cycles = l.detect(true)

	nodes := make([]*Node, len(b.records))
	for i, rec := range b.records {
		if !l.skipped[i] {
			nodes[i] = &Node{Record: rec}
		}
	}

	// Pass 2: attach in input order. Children are only allocated on first append,
	// which keeps leaves normalised without a separate pass.
	roots := make(Forest, 0)
	for i, node := range nodes {
		if node == nil {
			continue
		}
		if p := l.parent[i]; p >= 0 {
			parent := nodes[p]
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots
}

// Cycles returns the cycle report of the last Build, or nil when the input was acyclic.
func (b *Builder) Cycles() *CycleInfo {
	return b.cycles
}

// BuildForest is a convenience function that builds a forest directly from records.
func BuildForest(records []Record) Forest {
	return NewBuilder(records).Build()
}
