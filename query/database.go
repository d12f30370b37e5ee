package query

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// Database is the SQLite flavour of the record storage.
type Database struct {
	*sqlx.DB
	path   string
	initMu sync.Mutex
	ready  bool
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{DB: db}
}

// OpenDatabase prepares a handle on path without touching the disk;
// Init creates the file and the schema.
func OpenDatabase(path, driver string) (*Database, error) {
	if driver == "" {
		driver = DriverModernc
	}
	dbTemp, err := sqlx.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("OpenDatabase: %w", err)
	}
	// une seule connexion: SQLite n'a qu'un écrivain
	dbTemp.SetMaxOpenConns(1)
	db := NewDatabase(dbTemp)
	db.path = path
	return db, nil
}

func (db *Database) Path() string { return db.path }

func (db *Database) Init() error {
	db.initMu.Lock()
	defer db.initMu.Unlock()
	if db.ready {
		return nil
	}
	if db.path != "" && db.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
			return fmt.Errorf("Database.Init: %w", err)
		}
	}
	exist, err := db.TableExists(TableDatabaseVersion)
	if err != nil {
		// the file is there but is not a database we can read
		return fmt.Errorf("Database.Init: %w: %v", ErrCorrupt, err)
	}
	if !exist {
		if err := db.createVersionTable(); err != nil {
			return fmt.Errorf("Database.Init: %w", err)
		}
	}
	if err := db.updateDb(); err != nil {
		return fmt.Errorf("Database.Init: %w", err)
	}
	db.ready = true
	return nil
}
