package launch

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opecbrain/config"
	"opecbrain/entity"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.Storage.Backend = backend
	return cfg
}

func TestNew_BuildsStoreOnEachBackend(t *testing.T) {
	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			require.NoError(t, err)
			defer func() {
				for _, c := range a.closers {
					require.NoError(t, c.Close())
				}
			}()

			assert.FileExists(t, cfg.StoragePath())
			assert.NotNil(t, a.server)

			rec, err := a.Records().Upsert("CAIXA 7", entity.StatusReady)
			require.NoError(t, err)
			assert.Equal(t, entity.StatusReady, rec.Status)

			// no tray yet, the hook must not touch systray
			a.storageFailed("write", errors.New("disk full"))
		})
	}
}

func TestNew_WebDisabled(t *testing.T) {
	cfg := testConfig(t, config.BackendJSON)
	cfg.Web.Enabled = false
	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Nil(t, a.server)
}

func TestOpenRecords_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "csv")
	_, _, err := OpenRecords(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_StorageCannotBeCreated(t *testing.T) {
	cfg := testConfig(t, config.BackendJSON)
	blocker := filepath.Join(cfg.DataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg.Storage.File = filepath.Join(blocker, "historico.json")

	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
