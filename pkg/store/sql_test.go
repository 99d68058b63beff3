package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore opens a migrated sqlite store backed by a temp file.
func openTestStore(t *testing.T) *SQLStore {
	t.Helper()

	s, err := Open(Options{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "griddeck.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "nosuchdriver", DSN: "whatever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestSQLStore_Pins_Roundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pins := []string{"com.example.files", "com.example.music", "com.example.photos"}
	require.NoError(t, s.SetPins(ctx, "alice", pins))

	got, err := s.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, pins, got)

	// Replacing the list drops the old rows entirely.
	replaced := []string{"com.example.photos", "com.example.files"}
	require.NoError(t, s.SetPins(ctx, "alice", replaced))

	got, err = s.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, replaced, got)
}

func TestSQLStore_Pins_UnknownUser(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetPins(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLStore_Pins_ClearWithEmptyList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPins(ctx, "alice", []string{"com.example.files"}))
	require.NoError(t, s.SetPins(ctx, "alice", nil))

	got, err := s.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLStore_Pins_PerUserIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPins(ctx, "alice", []string{"com.example.files"}))
	require.NoError(t, s.SetPins(ctx, "bob", []string{"com.example.music", "com.example.photos"}))

	alice, err := s.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.files"}, alice)

	bob, err := s.GetPins(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.music", "com.example.photos"}, bob)
}

func TestSQLStore_Settings_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSetting(context.Background(), "theme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_Settings_SetGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetSetting(ctx, "theme", "dark"))

	value, err := s.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	// Setting the same key again upserts rather than erroring.
	require.NoError(t, s.SetSetting(ctx, "theme", "light"))

	value, err = s.GetSetting(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

func TestSQLStore_AllSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	settings, err := s.AllSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)

	require.NoError(t, s.SetSetting(ctx, "theme", "dark"))
	require.NoError(t, s.SetSetting(ctx, "language", "en-GB"))

	settings, err = s.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "dark", "language": "en-GB"}, settings)
}

func TestSQLStore_Ping(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestSQLStore_Rebind(t *testing.T) {
	query := `SELECT value FROM panel_settings WHERE key = ? AND value != ?`

	pg := NewSQLStore(nil, "postgres")
	assert.Equal(t, `SELECT value FROM panel_settings WHERE key = $1 AND value != $2`, pg.rebind(query))

	lite := NewSQLStore(nil, "sqlite3")
	assert.Equal(t, query, lite.rebind(query))
}

func TestSQLStore_GetSetting_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db, "postgres")

	rows := sqlmock.NewRows([]string{"value"}).AddRow("dark")
	mock.ExpectQuery(`SELECT value FROM panel_settings WHERE key = \$1`).
		WithArgs("theme").
		WillReturnRows(rows)

	value, err := s.GetSetting(context.Background(), "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetPins_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db, "postgres")

	mock.ExpectQuery("SELECT app_id FROM pinned_apps").
		WillReturnError(errors.New("connection reset"))

	_, err = s.GetPins(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query pins")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetPins_RollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db, "postgres")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pinned_apps").
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO pinned_apps").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = s.SetPins(context.Background(), "alice", []string{"com.example.files"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert pin")
	assert.NoError(t, mock.ExpectationsWereMet())
}
