package service_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notewise/backend/internal/service"
)

const settingsUpsertQuery = "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"

func setupSettingsService(t *testing.T) (*service.SettingsService, *sql.DB, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)

	return service.NewSettingsService(db), db, mockDB
}

func expectSettingsSave(mockDB sqlmock.Sqlmock, s *service.Settings, reserved string) {
	mockDB.ExpectBegin()
	query := regexp.QuoteMeta(settingsUpsertQuery)
	mockDB.ExpectExec(query).WithArgs("provider", s.Provider).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectExec(query).WithArgs("main_model", s.MainModel).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectExec(query).WithArgs("support_model", s.SupportModel).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectExec(query).WithArgs("api_key", s.APIKey).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectExec(query).WithArgs("reserved_output_tokens", reserved).WillReturnResult(sqlmock.NewResult(1, 1))
	mockDB.ExpectCommit()
}

func TestSettingsService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Get existing settings", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("provider", "ollama").
			AddRow("main_model", "llama3.2").
			AddRow("support_model", "llama3.2").
			AddRow("reserved_output_tokens", "1024")

		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ollama", settings.Provider)
		assert.Equal(t, "llama3.2", settings.MainModel)
		assert.Equal(t, "llama3.2", settings.SupportModel)
		assert.Equal(t, 1024, settings.ReservedOutputTokens)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Missing keys stay at zero values", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("provider", "openai")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "openai", settings.Provider)
		assert.Equal(t, "", settings.MainModel)
		assert.Equal(t, 0, settings.ReservedOutputTokens)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Malformed reserved tokens value is ignored", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("provider", "ollama").
			AddRow("reserved_output_tokens", "not-a-number")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, settings.ReservedOutputTokens)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - DB error on get", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		expectedErr := errors.New("db error")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnError(expectedErr)

		settings, err := settingsService.Get(ctx)
		require.Error(t, err)
		assert.Nil(t, settings)
		assert.Contains(t, err.Error(), expectedErr.Error())
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSettingsService_InitAndGet(t *testing.T) {
	ctx := context.Background()
	defaults := &service.Settings{
		Provider:             "ollama",
		MainModel:            "llama3.2",
		SupportModel:         "llama3.2",
		ReservedOutputTokens: 1024,
	}

	t.Run("Success - Settings already exist, just get them", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows([]string{"key", "value"}).
			AddRow("provider", "openai").
			AddRow("main_model", "gpt-4o-mini")
		mockDB.ExpectQuery("SELECT key, value FROM settings").WillReturnRows(rows)

		settings, err := settingsService.InitAndGet(ctx, defaults)
		require.NoError(t, err)
		assert.Equal(t, "openai", settings.Provider)
		assert.Equal(t, "gpt-4o-mini", settings.MainModel)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Success - Empty store is seeded with defaults", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectQuery("SELECT key, value FROM settings").
			WillReturnRows(sqlmock.NewRows([]string{"key", "value"}))
		expectSettingsSave(mockDB, defaults, "1024")

		settings, err := settingsService.InitAndGet(ctx, defaults)
		require.NoError(t, err)
		assert.Equal(t, "ollama", settings.Provider)
		assert.Equal(t, "llama3.2", settings.MainModel)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestSettingsService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Save valid settings", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		settingsToSave := &service.Settings{
			Provider:             "openai",
			MainModel:            "gpt-4o-mini",
			SupportModel:         "gpt-4o-mini",
			APIKey:               "sk-test",
			ReservedOutputTokens: 2048,
		}
		expectSettingsSave(mockDB, settingsToSave, "2048")

		err := settingsService.Save(ctx, settingsToSave)
		require.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Empty provider is rejected", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		err := settingsService.Save(ctx, &service.Settings{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider cannot be empty")
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - Negative reservation is rejected", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		err := settingsService.Save(ctx, &service.Settings{Provider: "ollama", ReservedOutputTokens: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Failure - DB error rolls back", func(t *testing.T) {
		settingsService, db, mockDB := setupSettingsService(t)
		defer func() { _ = db.Close() }()

		mockDB.ExpectBegin()
		mockDB.ExpectExec(regexp.QuoteMeta(settingsUpsertQuery)).
			WithArgs("provider", "ollama").
			WillReturnError(errors.New("disk full"))
		mockDB.ExpectRollback()

		err := settingsService.Save(ctx, &service.Settings{Provider: "ollama"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}
