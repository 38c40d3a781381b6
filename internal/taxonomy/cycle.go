package taxonomy

import (
	"container/list"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCycleDetected is returned when parent links form a cycle, leaving some records
// unreachable from any root.
var ErrCycleDetected = errors.New("cycle detected in type hierarchy")

// CycleInfo describes records that could not be reached from a root.
type CycleInfo struct {
	TotalNodes        int       `json:"totalNodes"`        // Number of distinct records considered
	ProcessedNodes    int       `json:"processedNodes"`    // Records reachable from a root
	UnprocessedIDs    []int64   `json:"unprocessedIds"`    // Records on a cycle or hanging below one, input order
	CycleParticipants []int64   `json:"cycleParticipants"` // Records that are their own ancestor, input order
	CyclePath         []int64   `json:"cyclePath"`         // First cycle in parent -> child order, e.g. [1, 2, 1]
	Promoted          []int64   `json:"promoted"`          // Records the builder promoted to root to break cycles
	Cycles            [][]int64 `json:"cycles"`            // Every distinct cycle, each in parent -> child order
}

// CycleError wraps a CycleInfo as an error.
type CycleError struct {
	Info *CycleInfo
}

// Error describes the cycle path, its members and the records blocked by it.
func (e *CycleError) Error() string {
	msg := fmt.Sprintf("%s: %d of %d types are not reachable from a root",
		ErrCycleDetected.Error(), len(e.Info.UnprocessedIDs), e.Info.TotalNodes)

	if len(e.Info.CyclePath) > 0 {
		msg += fmt.Sprintf("\nCycle path: %s", joinIDs(e.Info.CyclePath, " -> "))
	}

	if len(e.Info.CycleParticipants) > 0 {
		msg += fmt.Sprintf("\nTypes in cycle: %s", joinIDs(e.Info.CycleParticipants, ", "))
	}

	if blocked := e.Info.Blocked(); len(blocked) > 0 {
		msg += fmt.Sprintf("\nTypes blocked by cycle: %s", joinIDs(blocked, ", "))
	}

	return msg
}

// Unwrap allows errors.Is(err, ErrCycleDetected).
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// Blocked returns unprocessed records that are not themselves part of a cycle.
func (ci *CycleInfo) Blocked() []int64 {
	participants := make(map[int64]bool, len(ci.CycleParticipants))
	for _, id := range ci.CycleParticipants {
		participants[id] = true
	}

	var blocked []int64
	for _, id := range ci.UnprocessedIDs {
		if !participants[id] {
			blocked = append(blocked, id)
		}
	}
	return blocked
}

func joinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, sep)
}

// processingQueue holds record positions whose parent has been processed.
type processingQueue struct {
	queue *list.List
}

func newProcessingQueue() *processingQueue {
	return &processingQueue{queue: list.New()}
}

func (pq *processingQueue) enqueue(pos int) {
	pq.queue.PushBack(pos)
}

func (pq *processingQueue) dequeue() (int, bool) {
	if pq.queue.Len() == 0 {
		return 0, false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(int), true
}

func (pq *processingQueue) isEmpty() bool {
	return pq.queue.Len() == 0
}

// linkage is the resolved parent structure of a record list. Positions index into
// the original list; skipped positions are later duplicates of an id already seen.
type linkage struct {
	records  []Record
	parent   []int   // position of the resolved parent, -1 for roots
	children [][]int // positions of resolved children, input order
	skipped  []bool
	total    int
}

// link resolves parent ids to positions. Drafts and unresolvable parents become roots.
// When an id occurs more than once the first occurrence wins.
func link(records []Record) *linkage {
	l := &linkage{
		records:  records,
		parent:   make([]int, len(records)),
		children: make([][]int, len(records)),
		skipped:  make([]bool, len(records)),
	}

	index := make(map[int64]int, len(records))
	for i, rec := range records {
		if rec.ID == 0 {
			continue
		}
		if _, seen := index[rec.ID]; seen {
			l.skipped[i] = true
			continue
		}
		index[rec.ID] = i
	}

	for i, rec := range records {
		l.parent[i] = -1
		if l.skipped[i] {
			continue
		}
		l.total++
		if rec.ParentID == 0 {
			continue
		}
		if p, ok := index[rec.ParentID]; ok {
			l.parent[i] = p
			l.children[p] = append(l.children[p], i)
		}
	}

	return l
}

// calculateInDegrees returns 1 for every record with a resolved parent and 0 otherwise.
func (l *linkage) calculateInDegrees() []int {
	inDegree := make([]int, len(l.records))
	for i := range l.records {
		if !l.skipped[i] && l.parent[i] >= 0 {
			inDegree[i] = 1
		}
	}
	return inDegree
}

// process runs Kahn's algorithm from every zero in-degree record and returns the
// set of processed positions.
func (l *linkage) process() []bool {
	inDegree := l.calculateInDegrees()
	processed := make([]bool, len(l.records))

	queue := newProcessingQueue()
	for i := range l.records {
		if !l.skipped[i] && inDegree[i] == 0 {
			queue.enqueue(i)
		}
	}

	l.drain(queue, inDegree, processed)
	return processed
}

// drain processes queued records, releasing children as their parent completes.
func (l *linkage) drain(queue *processingQueue, inDegree []int, processed []bool) {
	for !queue.isEmpty() {
		pos, _ := queue.dequeue()
		processed[pos] = true

		for _, child := range l.children[pos] {
			if processed[child] {
				continue
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.enqueue(child)
			}
		}
	}
}

// isParticipant reports whether following parent links from pos returns to pos.
func (l *linkage) isParticipant(pos int) bool {
	current := l.parent[pos]
	for steps := 0; current >= 0 && steps < len(l.records); steps++ {
		if current == pos {
			return true
		}
		current = l.parent[current]
	}
	return false
}

// cyclePath returns the cycle through pos in parent -> child order, starting and
// ending with pos.
func (l *linkage) cyclePath(pos int) []int64 {
	ancestors := []int64{l.records[pos].ID}
	for current := l.parent[pos]; current != pos; current = l.parent[current] {
		ancestors = append(ancestors, l.records[current].ID)
	}
	ancestors = append(ancestors, l.records[pos].ID)

	path := make([]int64, len(ancestors))
	for i, id := range ancestors {
		path[len(ancestors)-1-i] = id
	}
	return path
}

// detect runs the reachability pass and, when breakCycles is set, promotes the
// first participant of each cycle to root until every record is reachable.
// Returns nil when the records are acyclic.
func (l *linkage) detect(breakCycles bool) *CycleInfo {
	processed := l.process()

	processedCount := 0
	for i := range l.records {
		if processed[i] {
			processedCount++
		}
	}
	if processedCount == l.total {
		return nil
	}

	info := &CycleInfo{
		TotalNodes:     l.total,
		ProcessedNodes: processedCount,
	}

	participant := make([]bool, len(l.records))
	for i, rec := range l.records {
		if l.skipped[i] || processed[i] {
			continue
		}
		info.UnprocessedIDs = append(info.UnprocessedIDs, rec.ID)
		if l.isParticipant(i) {
			participant[i] = true
			info.CycleParticipants = append(info.CycleParticipants, rec.ID)
		}
	}

	// Each cycle is reported once, keyed by its first participant in input order.
	reported := make([]bool, len(l.records))
	for i := range l.records {
		if !participant[i] || reported[i] {
			continue
		}
		path := l.cyclePath(i)
		info.Cycles = append(info.Cycles, path)
		reported[i] = true
		for current := l.parent[i]; current != i; current = l.parent[current] {
			reported[current] = true
		}
	}
	if len(info.Cycles) > 0 {
		info.CyclePath = info.Cycles[0]
	}

	if breakCycles {
		l.breakCycles(processed, participant, info)
	}

	return info
}

// breakCycles cuts the parent link of the first unprocessed participant of each
// cycle and processes everything now reachable from it.
func (l *linkage) breakCycles(processed, participant []bool, info *CycleInfo) {
	inDegree := make([]int, len(l.records))
	for i := range l.records {
		if !processed[i] && l.parent[i] >= 0 {
			inDegree[i] = 1
		}
	}

	for i := range l.records {
		if processed[i] || !participant[i] {
			continue
		}

		oldParent := l.parent[i]
		l.parent[i] = -1
		l.children[oldParent] = removePosition(l.children[oldParent], i)
		inDegree[i] = 0
		info.Promoted = append(info.Promoted, l.records[i].ID)

		queue := newProcessingQueue()
		queue.enqueue(i)
		l.drain(queue, inDegree, processed)
	}
}

func removePosition(positions []int, pos int) []int {
	out := positions[:0:0]
	for _, p := range positions {
		if p != pos {
			out = append(out, p)
		}
	}
	return out
}

// DetectCycles reports records whose parent links never reach a root. It returns
// nil when every record is reachable. Records are not modified.
func DetectCycles(records []Record) *CycleInfo {
	return link(records).detect(false)
}

// HasCycle returns true if the records contain a parent cycle.
func HasCycle(records []Record) bool {
	return DetectCycles(records) != nil
}

// Validate returns a *CycleError when the records contain a parent cycle.
func Validate(records []Record) error {
	if info := DetectCycles(records); info != nil {
		return &CycleError{Info: info}
	}
	return nil
}

// WouldCreateCycle reports whether re-parenting id under newParentID would make id
// its own ancestor, evaluated against records. Cycles elsewhere in records that do
// not involve id are ignored.
func WouldCreateCycle(records []Record, id, newParentID int64) bool {
	if id == 0 || newParentID == 0 {
		return false
	}

	parents := make(map[int64]int64, len(records))
	for _, rec := range records {
		if rec.ID == 0 {
			continue
		}
		if _, seen := parents[rec.ID]; !seen {
			parents[rec.ID] = rec.ParentID
		}
	}

	current := newParentID
	for steps := 0; steps <= len(parents); steps++ {
		if current == id {
			return true
		}
		next, ok := parents[current]
		if !ok || next == 0 {
			return false
		}
		current = next
	}
	return false
}
