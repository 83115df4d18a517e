package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Settings holds the dynamic application settings persisted in the settings
// table: selected backend, credential, default models, and the output-token
// reservation used for budget calculation.
type Settings struct {
	Provider             string `json:"provider"`
	MainModel            string `json:"main_model"`
	SupportModel         string `json:"support_model"`
	APIKey               string `json:"api_key"`
	ReservedOutputTokens int    `json:"reserved_output_tokens"`
}

type SettingsService struct {
	db *sql.DB
}

func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// InitAndGet returns the persisted settings, seeding them from defaults when
// the store is empty. A corrupted or absent store behaves as empty.
func (s *SettingsService) InitAndGet(ctx context.Context, defaults *Settings) (*Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Provider != "" {
		return settings, nil
	}

	if err := s.Save(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to save initial settings: %w", err)
	}
	return defaults, nil
}

// Get reads the whole settings table into a Settings value. Missing keys
// stay at their zero values.
func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}
	defer rows.Close()

	settings := &Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case "provider":
			settings.Provider = value
		case "main_model":
			settings.MainModel = value
		case "support_model":
			settings.SupportModel = value
		case "api_key":
			settings.APIKey = value
		case "reserved_output_tokens":
			if n, err := strconv.Atoi(value); err == nil {
				settings.ReservedOutputTokens = n
			}
		}
	}
	return settings, rows.Err()
}

// Save upserts every settings key in one transaction.
func (s *SettingsService) Save(ctx context.Context, settings *Settings) error {
	if settings.Provider == "" {
		return fmt.Errorf("provider cannot be empty")
	}
	if settings.ReservedOutputTokens < 0 {
		return fmt.Errorf("reserved output tokens cannot be negative")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	pairs := []struct{ key, value string }{
		{"provider", settings.Provider},
		{"main_model", settings.MainModel},
		{"support_model", settings.SupportModel},
		{"api_key", settings.APIKey},
		{"reserved_output_tokens", strconv.Itoa(settings.ReservedOutputTokens)},
	}
	query := "INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx, query, p.key, p.value); err != nil {
			return fmt.Errorf("could not save setting %s: %w", p.key, err)
		}
	}
	return tx.Commit()
}
