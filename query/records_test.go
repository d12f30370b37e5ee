package query

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "data", "historico.db"), DriverModernc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Init())
	return db
}

func TestDatabase_InitSchema(t *testing.T) {
	db := openTestDatabase(t)

	version, err := db.GetDbVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	exist, err := db.TableExists("records")
	require.NoError(t, err)
	assert.True(t, exist)

	// a second Init on an up to date database is a no-op
	require.NoError(t, db.Init())
	records, err := db.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDatabase_RoundTripKeepsOrder(t *testing.T) {
	db := openTestDatabase(t)
	want := sampleRecords()

	require.NoError(t, db.WriteAll(want))
	got, err := db.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// rewriting a shorter prefix replaces the whole collection
	require.NoError(t, db.WriteAll(want[:1]))
	got, err = db.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, want[:1], got)
}

func TestDatabase_InitOnGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "historico.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("this is not a sqlite database, just text\n", 64)), 0o644))

	db, err := OpenDatabase(path, DriverModernc)
	require.NoError(t, err)
	defer db.Close()

	err = db.Init()
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestDatabase_WriteAllRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewDatabase(sqlx.NewDb(sqlDB, DriverModernc))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM records").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO records").
		WithArgs("CAIXA 1", "2024-03-10 08:00:00", "2024-03-10 17:30:00", nil, "Desceu").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = db.WriteAll(sampleRecords())
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_ReadAllError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewDatabase(sqlx.NewDb(sqlDB, DriverModernc))

	mock.ExpectQuery("SELECT objeto, subiu, desceu, pronto, status").
		WillReturnError(errors.New("database disk image is malformed"))

	records, err := db.ReadAll()
	assert.Nil(t, records)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
