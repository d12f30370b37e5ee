package query

import (
	"fmt"

	"opecbrain/entity"
)

func (db *Database) ReadAll() ([]entity.Record, error) {
	records := []entity.Record{}
	err := db.Select(&records, `
	SELECT objeto, subiu, desceu, pronto, status
	FROM records
	ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}
	return records, nil
}

// WriteAll replaces the table content with records in one transaction, so
// readers see either the previous collection or the new one.
func (db *Database) WriteAll(records []entity.Record) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("WriteAll: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("WriteAll: %w", err)
	}
	for _, rec := range records {
		_, err := tx.Exec(`
		INSERT INTO records (objeto, subiu, desceu, pronto, status)
		VALUES (?, ?, ?, ?, ?)`,
			rec.Object, rec.Raised, rec.Lowered, rec.Ready, rec.Status)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("WriteAll: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("WriteAll: %w", err)
	}
	return nil
}
