package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// document is the on-disk layout of a records file.
type document struct {
	Types []taxonomy.Record `json:"types" yaml:"types"`
}

// FileStore keeps types in a YAML or JSON file, chosen by extension (.json is
// JSON, anything else YAML). A missing file reads as empty and is created on the
// first write. Writes replace the file atomically.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logger.Logger
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, log *logger.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("records file path is empty")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &FileStore{path: path, logger: log.WithSource("file:" + path)}, nil
}

func (s *FileStore) isJSON() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".json")
}

// List returns the records in file order.
func (s *FileStore) List(ctx context.Context) ([]taxonomy.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() ([]taxonomy.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make([]taxonomy.Record, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var doc document
	if s.isJSON() {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", s.path, err)
	}

	if doc.Types == nil {
		doc.Types = make([]taxonomy.Record, 0)
	}
	return doc.Types, nil
}

func (s *FileStore) write(records []taxonomy.Record) error {
	doc := document{Types: records}

	var data []byte
	var err error
	if s.isJSON() {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".dicttree-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace records file: %w", err)
	}
	return nil
}

// Create appends a new type with the next free id.
func (s *FileStore) Create(ctx context.Context, req CreateRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return 0, err
	}

	var maxID int64
	for _, rec := range records {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}

	id := maxID + 1
	records = append(records, taxonomy.Record{
		ID:       id,
		Name:     req.Name,
		TypeKey:  req.TypeKey,
		ParentID: req.ParentID,
		Status:   req.Status,
		Remark:   req.Remark,
	})

	if err := s.write(records); err != nil {
		return 0, err
	}

	s.logger.WithType(id).Infow("Created type", "type_key", req.TypeKey, "parent_id", req.ParentID)
	return id, nil
}

// Update rewrites an existing type in place, keeping its position and type key.
func (s *FileStore) Update(ctx context.Context, req UpdateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	if err := checkMove(records, req); err != nil {
		s.logger.WithType(req.ID).Warnw("Rejected type update", "parent_id", req.ParentID, "error", err)
		return err
	}

	for i := range records {
		if records[i].ID != req.ID {
			continue
		}
		records[i].Name = req.Name
		records[i].ParentID = req.ParentID
		records[i].Status = req.Status
		records[i].Remark = req.Remark
	}

	if err := s.write(records); err != nil {
		return err
	}

	s.logger.WithType(req.ID).Infow("Updated type", "parent_id", req.ParentID)
	return nil
}

// Delete removes every record carrying one of ids.
func (s *FileStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return 0, err
	}

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := records[:0:0]
	deleted := make(map[int64]bool)
	for _, rec := range records {
		if drop[rec.ID] {
			deleted[rec.ID] = true
			continue
		}
		kept = append(kept, rec)
	}

	if len(deleted) == 0 {
		return 0, nil
	}
	if err := s.write(kept); err != nil {
		return 0, err
	}

	s.logger.Infow("Deleted types", "requested", len(ids), "deleted", len(deleted))
	return int64(len(deleted)), nil
}
