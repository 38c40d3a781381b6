package store

import (
	"database/sql"
	"fmt"

	"github.com/dbsmedya/dicttree/internal/config"
	"github.com/dbsmedya/dicttree/internal/logger"
)

// New returns the store selected by cfg. db is only used by the MySQL driver.
func New(cfg config.StoreConfig, db *sql.DB, log *logger.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.File, log)
	case config.DriverMySQL, "":
		return NewMySQLStore(db, cfg.Table, cfg.LockTimeout, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
