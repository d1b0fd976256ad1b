package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

func settingsColumns() []string {
	return []string{
		"enabled", "frequency", "hour_of_day", "batch_size", "retry_failed",
		"max_retries", "next_scheduled_run", "last_run", "updated_at",
	}
}

func TestSettingsRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSettingsRepository(db)

	next := time.Date(2024, 1, 8, 3, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(settingsColumns()).
		AddRow(true, "weekly", 3, 10, true, 3, next, nil, time.Now())

	mock.ExpectQuery("SELECT enabled, frequency").WillReturnRows(rows)

	settings, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !settings.Enabled {
		t.Error("Enabled = false, want true")
	}
	if settings.Frequency != domain.FrequencyWeekly {
		t.Errorf("Frequency = %s, want weekly", settings.Frequency)
	}
	if settings.NextScheduledRun == nil || !settings.NextScheduledRun.Equal(next) {
		t.Errorf("NextScheduledRun = %v, want %v", settings.NextScheduledRun, next)
	}
}

func TestSettingsRepository_GetSeedsDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSettingsRepository(db)

	mock.ExpectQuery("SELECT enabled, frequency").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO automation_settings").
		WillReturnResult(sqlmock.NewResult(0, 1))

	settings, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	defaults := domain.DefaultSettings()
	if settings.Enabled != defaults.Enabled {
		t.Errorf("Enabled = %v, want default %v", settings.Enabled, defaults.Enabled)
	}
	if settings.Frequency != defaults.Frequency {
		t.Errorf("Frequency = %s, want default %s", settings.Frequency, defaults.Frequency)
	}
	if settings.BatchSize != defaults.BatchSize {
		t.Errorf("BatchSize = %d, want default %d", settings.BatchSize, defaults.BatchSize)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSettingsRepository_RecordRun(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewSettingsRepository(db)

	lastRun := time.Date(2024, 1, 8, 3, 1, 0, 0, time.UTC)
	nextRun := time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE automation_settings").
		WithArgs(lastRun, nextRun).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordRun(context.Background(), lastRun, nextRun); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
