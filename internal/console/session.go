// Package console holds the state of a type administration session: the forest
// built from the latest list, the search term and the expanded-node set. Every
// edit goes to the store and is followed by a full rebuild.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/store"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var (
	// ErrInvalidParent is returned when an update would place a type under
	// itself or one of its descendants.
	ErrInvalidParent = errors.New("parent is the type itself or one of its descendants")

	// ErrTypeKeyImmutable is returned when a save tries to change the key of an
	// existing type.
	ErrTypeKeyImmutable = errors.New("type key cannot be changed once created")
)

// RootLabel is the label of the "no parent" entry in parent option lists.
const RootLabel = "(root)"

// Recorder receives rebuild and edit observations. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveRebuild(start time.Time, stats taxonomy.ForestStats, cycles *taxonomy.CycleInfo)
	ObserveEdit(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRebuild(time.Time, taxonomy.ForestStats, *taxonomy.CycleInfo) {}
func (nopRecorder) ObserveEdit(string, error)                                         {}

// Options configures a Session.
type Options struct {
	Indent   string // option label indent, taxonomy.DefaultIndent when empty
	Logger   *logger.Logger
	Recorder Recorder
}

// Session is safe for concurrent use. Readers see the forest of the last
// successful Reload.
type Session struct {
	store    store.Store
	indent   string
	logger   *logger.Logger
	recorder Recorder

	// reloadMu serialises whole reloads so a slower list never replaces the
	// result of a later one.
	reloadMu sync.Mutex

	mu        sync.RWMutex
	records   []taxonomy.Record
	forest    taxonomy.Forest
	cycles    *taxonomy.CycleInfo
	expand    *taxonomy.ExpandState
	expandAll bool
	term      string
}

// NewSession creates a session over st. Call Reload before reading.
func NewSession(st store.Store, opts Options) *Session {
	if opts.Indent == "" {
		opts.Indent = taxonomy.DefaultIndent
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Session{
		store:    st,
		indent:   opts.Indent,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		forest:   taxonomy.Forest{},
		expand:   taxonomy.NewExpandState(),
	}
}

// Reload lists the records, rebuilds the forest and recomputes the expand set.
// After expand-all the new forest is fully expanded again; otherwise ids that no
// longer have children are dropped.
func (s *Session) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()

	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list types: %w", err)
	}

	builder := taxonomy.NewBuilder(records)
	forest := builder.Build()
	cycles := builder.Cycles()

	s.report(records, cycles)

	s.mu.Lock()
	s.records = records
	s.forest = forest
	s.cycles = cycles
	if s.expandAll {
		s.expand.ExpandAll(forest)
	} else {
		s.expand = retainBranches(s.expand, forest)
	}
	s.mu.Unlock()

	stats := taxonomy.Stats(forest)
	s.recorder.ObserveRebuild(start, stats, cycles)
	s.logger.Debugw("Rebuilt type forest",
		"nodes", stats.Nodes, "roots", stats.Roots, "max_depth", stats.MaxDepth,
		"duration", time.Since(start))
	return nil
}

// report logs data problems the builder tolerated.
func (s *Session) report(records []taxonomy.Record, cycles *taxonomy.CycleInfo) {
	if cycles != nil {
		s.logger.Warnw("Parent cycle broken by promoting types to root",
			"promoted", cycles.Promoted, "cycle_path", cycles.CyclePath)
	}
	for _, rec := range taxonomy.DanglingParents(records) {
		s.logger.WithType(rec.ID).Warnw("Parent not found, placed at root", "parent_id", rec.ParentID)
	}
	if ids := taxonomy.DuplicateIDs(records); len(ids) > 0 {
		s.logger.Warnw("Duplicate type ids, later records ignored", "ids", ids)
	}
	dups := taxonomy.DuplicateTypeKeys(records)
	for _, key := range dups.Keys() {
		ids, _ := dups.Get(key)
		s.logger.Warnw("Type key used more than once", "type_key", key, "ids", ids)
	}
}

func retainBranches(state *taxonomy.ExpandState, forest taxonomy.Forest) *taxonomy.ExpandState {
	branches := make(map[int64]bool)
	for _, id := range taxonomy.Branches(forest) {
		branches[id] = true
	}

	kept := make([]int64, 0, state.Len())
	for _, id := range state.IDs() {
		if branches[id] {
			kept = append(kept, id)
		}
	}
	return taxonomy.NewExpandStateFrom(kept)
}

// Records returns the records of the last reload.
func (s *Session) Records() []taxonomy.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]taxonomy.Record(nil), s.records...)
}

// Forest returns the full forest of the last reload.
func (s *Session) Forest() taxonomy.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest
}

// Cycles returns the cycle report of the last reload, nil when acyclic.
func (s *Session) Cycles() *taxonomy.CycleInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles
}

// Stats describes the shape of the current forest.
func (s *Session) Stats() taxonomy.ForestStats {
	return taxonomy.Stats(s.Forest())
}

// SetSearch sets the term that View and Options filter by, trimmed of
// surrounding whitespace.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	s.term = strings.TrimSpace(term)
	s.mu.Unlock()
}

// SearchTerm returns the current search term.
func (s *Session) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

// View returns the forest filtered by the current search term.
func (s *Session) View() taxonomy.Forest {
	return s.ViewFor(s.SearchTerm())
}

// ViewFor returns the forest filtered by term without changing the session's
// own search term.
func (s *Session) ViewFor(term string) taxonomy.Forest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return taxonomy.Search(s.forest, term)
}

// Options returns the flattened options of the current forest, filtered by the
// current search term.
func (s *Session) Options() []taxonomy.Option {
	return s.OptionsFor(s.SearchTerm())
}

// OptionsFor is Options for an explicit term.
func (s *Session) OptionsFor(term string) []taxonomy.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return taxonomy.FilterOptions(taxonomy.Project(s.forest, s.indent), s.indent, term)
}

// ParentOptions returns the choices for a new parent of id: a root entry
// followed by every type outside id's subtree. id 0 is a draft and may go anywhere.
func (s *Session) ParentOptions(id int64) []taxonomy.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := taxonomy.Project(taxonomy.ParentCandidates(s.forest, id), s.indent)
	options := make([]taxonomy.Option, 0, len(candidates)+1)
	options = append(options, taxonomy.Option{Label: RootLabel})
	return append(options, candidates...)
}

// Select resolves id to its type key and node.
func (s *Session) Select(id int64) (taxonomy.Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return taxonomy.Select(s.forest, id)
}

// Toggle flips the expanded state of id and leaves expand-all mode.
func (s *Session) Toggle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandAll = false
	return s.expand.Toggle(id)
}

// ExpandAll expands every branch, now and after each reload.
func (s *Session) ExpandAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandAll = true
	s.expand.ExpandAll(s.forest)
}

// CollapseAll collapses every branch.
func (s *Session) CollapseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expandAll = false
	s.expand.CollapseAll()
}

// Expanded returns the expanded ids.
func (s *Session) Expanded() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expand.IDs()
}

// Rows returns the visible rows of the filtered view. While a search is active
// every kept branch is shown open so matches are never hidden.
func (s *Session) Rows() []taxonomy.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := taxonomy.Search(s.forest, s.term)
	state := s.expand
	if !taxonomy.NewMatcher(s.term).Empty() {
		state = taxonomy.NewExpandState()
		state.ExpandAll(view)
	}
	return taxonomy.VisibleRows(view, state)
}
