package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
	"vessel-registry/internal/testutil/catalogtest"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "vessel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestCatalogContract(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) (ports.ModelRepository, ports.VersionRepository) {
		db := openTestDB(t)
		return NewModelRepository(db), NewVersionRepository(db)
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	models := NewModelRepository(db)
	m := catalogtest.NewModel(t, models, "resnet")

	require.NoError(t, Migrate(context.Background(), db))

	got, err := models.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "resnet", got.Name)
}

func TestOpen_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vessel.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	m := catalogtest.NewModel(t, NewModelRepository(db), "resnet")
	require.NoError(t, Close(db))

	db, err = Open(path)
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Ping(ctx, db))

	got, err := NewModelRepository(db).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveStateActive, got.State)
}

func TestLoggerAdaptor_LogsErrors(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	adaptor := NewLoggerAdaptor(logger, LoggerAdaptorConfig{IgnoreRecordNotFoundError: true})

	adaptor.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, assert.AnError)
	adaptor.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 0 }, gorm.ErrRecordNotFound)

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Equal(t, "SELECT 1", entries[0].Data["sql"])
}

func TestLoggerAdaptor_SlowQuery(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	adaptor := NewLoggerAdaptor(logger, LoggerAdaptorConfig{SlowThreshold: time.Millisecond})

	adaptor.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", -1 }, nil)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "-", entry.Data["rows"])
}
