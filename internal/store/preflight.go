package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/dicttree/internal/logger"
	"github.com/dbsmedya/dicttree/internal/sqlutil"
)

// requiredColumns are the columns the MySQL store reads and writes.
var requiredColumns = []string{"id", "name", "type_key", "parent_id", "status", "remark"}

// PreflightError represents a preflight check failure.
type PreflightError struct {
	Check   string
	Message string
	Items   []string
}

func (e *PreflightError) Error() string {
	if len(e.Items) > 0 {
		return fmt.Sprintf("%s: %s (%v)", e.Check, e.Message, e.Items)
	}
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// PreflightChecker verifies that the configured table can back a MySQLStore.
type PreflightChecker struct {
	db       *sql.DB
	database string
	table    string
	logger   *logger.Logger
}

// NewPreflightChecker creates a checker for table in database.
func NewPreflightChecker(db *sql.DB, database, table string, log *logger.Logger) (*PreflightChecker, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	if !sqlutil.IsValidIdentifier(table) {
		return nil, &sqlutil.InvalidIdentifierError{Name: table}
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &PreflightChecker{db: db, database: database, table: table, logger: log}, nil
}

// RunAllChecks runs every check and stops at the first failure.
func (p *PreflightChecker) RunAllChecks(ctx context.Context) error {
	p.logger.Info("Running preflight checks...")

	if err := p.ValidateTable(ctx); err != nil {
		return err
	}
	if err := p.ValidateColumns(ctx); err != nil {
		return err
	}

	p.logger.Info("All preflight checks PASSED")
	return nil
}

// ValidateTable checks that the table exists and uses InnoDB.
func (p *PreflightChecker) ValidateTable(ctx context.Context) error {
	p.logger.Debug("Checking table existence...")

	const query = `
		SELECT ENGINE
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?`

	var engine sql.NullString
	err := p.db.QueryRowContext(ctx, query, p.database, p.table).Scan(&engine)
	if err == sql.ErrNoRows {
		return &PreflightError{
			Check:   "TABLE_EXISTENCE_CHECK",
			Message: "Table not found in database",
			Items:   []string{p.database + "." + p.table},
		}
	}
	if err != nil {
		return fmt.Errorf("failed to query table: %w", err)
	}

	if engine.String != "InnoDB" {
		return &PreflightError{
			Check:   "STORAGE_ENGINE_CHECK",
			Message: "Only InnoDB tables are supported. Use ALTER TABLE to convert",
			Items:   []string{fmt.Sprintf("%s(%s)", p.table, engine.String)},
		}
	}

	p.logger.Debugf("Table check PASSED (%s is InnoDB)", p.table)
	return nil
}

// ValidateColumns checks that every column the store uses is present.
func (p *PreflightChecker) ValidateColumns(ctx context.Context) error {
	p.logger.Debug("Checking columns...")

	const query = `
		SELECT COLUMN_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?`

	rows, err := p.db.QueryContext(ctx, query, p.database, p.table)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &PreflightError{
			Check:   "COLUMN_CHECK",
			Message: "Columns not found in " + p.table,
			Items:   missing,
		}
	}

	p.logger.Debugf("Column check PASSED (%d columns)", len(requiredColumns))
	return nil
}
