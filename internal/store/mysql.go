package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/dicttree/internal/lock"
	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/sqlutil"
	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

var recordColumns = []string{"id", "name", "type_key", "parent_id", "status", "remark"}

// MySQLStore keeps types in a single MySQL table:
//
//	CREATE TABLE dict_type (
//	  id        BIGINT PRIMARY KEY AUTO_INCREMENT,
//	  name      VARCHAR(100) NOT NULL,
//	  type_key  VARCHAR(100) NOT NULL UNIQUE,
//	  parent_id BIGINT NOT NULL DEFAULT 0,
//	  status    TINYINT NOT NULL DEFAULT 0,
//	  remark    VARCHAR(500) NULL
//	);
//
// Updates run under an advisory lock and re-check the move against the current
// table contents, so two concurrent re-parentings cannot close a cycle.
type MySQLStore struct {
	db          *sql.DB
	table       string // quoted
	rawTable    string
	lockTimeout int
	logger      *logger.Logger
}

// NewMySQLStore creates a store over table. lockTimeout is in seconds.
func NewMySQLStore(db *sql.DB, table string, lockTimeout int, log *logger.Logger) (*MySQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	quoted, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &MySQLStore{
		db:          db,
		table:       quoted,
		rawTable:    table,
		lockTimeout: lockTimeout,
		logger:      log.WithSource("mysql:" + table),
	}, nil
}

// queryer is satisfied by *sql.DB and *sql.Conn.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// List returns every record ordered by id.
func (s *MySQLStore) List(ctx context.Context) ([]taxonomy.Record, error) {
	return s.list(ctx, s.db)
}

func (s *MySQLStore) list(ctx context.Context, q queryer) ([]taxonomy.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		sqlutil.QuoteColumns(recordColumns...), s.table, sqlutil.QuoteIdentifier("id"))

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list types: %w", err)
	}
	defer rows.Close()

	records := make([]taxonomy.Record, 0)
	for rows.Next() {
		var rec taxonomy.Record
		var remark sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.TypeKey, &rec.ParentID, &rec.Status, &remark); err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		rec.Remark = remark.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate types: %w", err)
	}

	s.logger.Debugw("Listed types", "count", len(records))
	return records, nil
}

// Create inserts a new type and returns its id.
func (s *MySQLStore) Create(ctx context.Context, req CreateRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, sqlutil.QuoteColumns(recordColumns[1:]...), sqlutil.Placeholders(len(recordColumns)-1))

	result, err := s.db.ExecContext(ctx, query, req.Name, req.TypeKey, req.ParentID, req.Status, req.Remark)
	if err != nil {
		return 0, fmt.Errorf("failed to create type %q: %w", req.TypeKey, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new type id: %w", err)
	}

	s.logger.WithType(id).Infow("Created type", "type_key", req.TypeKey, "parent_id", req.ParentID)
	return id, nil
}

// Update rewrites name, parent, status and remark of an existing type.
func (s *MySQLStore) Update(ctx context.Context, req UpdateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	// GET_LOCK belongs to a session, so the lock, the re-check and the write
	// share one connection.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	editLock := lock.NewEditLock(conn, s.rawTable)
	return editLock.WithLock(ctx, s.lockTimeout, func() error {
		records, err := s.list(ctx, conn)
		if err != nil {
			return err
		}
		if err := checkMove(records, req); err != nil {
			s.logger.WithType(req.ID).Warnw("Rejected type update", "parent_id", req.ParentID, "error", err)
			return err
		}

		query := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ?, %s = ? WHERE %s = ?",
			s.table,
			sqlutil.QuoteIdentifier("name"),
			sqlutil.QuoteIdentifier("parent_id"),
			sqlutil.QuoteIdentifier("status"),
			sqlutil.QuoteIdentifier("remark"),
			sqlutil.QuoteIdentifier("id"))

		if _, err := conn.ExecContext(ctx, query, req.Name, req.ParentID, req.Status, req.Remark, req.ID); err != nil {
			return fmt.Errorf("failed to update type %d: %w", req.ID, err)
		}

		s.logger.WithType(req.ID).Infow("Updated type", "parent_id", req.ParentID)
		return nil
	})
}

// Delete removes the given ids. Children of a deleted type are left in place and
// surface as roots on the next build.
func (s *MySQLStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		s.table, sqlutil.QuoteIdentifier("id"), sqlutil.Placeholders(len(ids)))

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete types: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted count: %w", err)
	}

	s.logger.Infow("Deleted types", "requested", len(ids), "deleted", affected)
	return affected, nil
}
