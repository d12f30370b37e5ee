package query

import (
	"fmt"
)

const (
	TableDatabaseVersion = "database_version"
	// SchemaVersion is the version updateDb brings a database to.
	SchemaVersion = 1
)

func (db *Database) GetDbVersion() (int, error) {
	var dbVersion int
	query := "SELECT db_version FROM database_version LIMIT 1"
	err := db.Get(&dbVersion, query)
	if err != nil {
		return 0, fmt.Errorf("GetDbVersion: %w", err)
	}
	return dbVersion, nil
}

func (db *Database) TableExists(tableName string) (bool, error) {
	query := `
		SELECT count(name) 
		FROM sqlite_master 
		WHERE type='table' AND name=?
	`

	var count int
	err := db.QueryRow(query, tableName).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (db *Database) createVersionTable() error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("createVersionTable: %w", err)
	}
	if _, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS database_version (
		db_version INTEGER default 0)`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("createVersionTable: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO database_version VALUES(0)`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("createVersionTable: %w", err)
	}
	return tx.Commit()
}

func (db *Database) updateDb() error {
	dbVersion, err := db.GetDbVersion()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	if dbVersion >= SchemaVersion {
		return nil
	}
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	if dbVersion < 1 {
		// position garde l'ordre d'insertion des objets
		_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			position INTEGER PRIMARY KEY AUTOINCREMENT,
			objeto TEXT NOT NULL,
			subiu TEXT,
			desceu TEXT,
			pronto TEXT,
			status TEXT
		)`)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("updateDb version 1: %w", err)
		}
		_, err = tx.Exec(`UPDATE database_version SET db_version=1`)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("updateDb version 1: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("updateDb: error at commit rollback: %w", err)
	}
	return nil
}
