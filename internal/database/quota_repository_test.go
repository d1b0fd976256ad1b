package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/database"
)

func TestQuotaRepository_TryIncrement(t *testing.T) {
	testCases := []struct {
		name         string
		setupMock    func(mock sqlmock.Sqlmock)
		wantAdmitted bool
		wantErr      bool
	}{
		{
			name: "admitted under limit",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO quota_counters").
					WithArgs("pagespeed", "2024-06", 1, 25000).
					WillReturnRows(sqlmock.NewRows([]string{"used"}).AddRow(5))
			},
			wantAdmitted: true,
		},
		{
			// The guard clause rejects the update: no row comes back.
			name: "denied at limit",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO quota_counters").
					WithArgs("pagespeed", "2024-06", 1, 25000).
					WillReturnError(sql.ErrNoRows)
			},
			wantAdmitted: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INSERT INTO quota_counters").
					WithArgs("pagespeed", "2024-06", 1, 25000).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := database.NewQuotaRepository(db)
			tc.setupMock(mock)

			admitted, err := repo.TryIncrement(context.Background(), "pagespeed", "2024-06", 1, 25000)
			if (err != nil) != tc.wantErr {
				t.Fatalf("TryIncrement() error = %v, wantErr %v", err, tc.wantErr)
			}
			if admitted != tc.wantAdmitted {
				t.Errorf("admitted = %v, want %v", admitted, tc.wantAdmitted)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestQuotaRepository_GetMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewQuotaRepository(db)

	mock.ExpectQuery("SELECT provider, period, used, limit_max, updated_at").
		WithArgs("pagespeed", "2024-06").
		WillReturnError(sql.ErrNoRows)

	counter, err := repo.Get(context.Background(), "pagespeed", "2024-06", 25000)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if counter.Used != 0 {
		t.Errorf("Used = %d, want 0", counter.Used)
	}
	if counter.Limit != 25000 {
		t.Errorf("Limit = %d, want 25000", counter.Limit)
	}
	if counter.Remaining() != 25000 {
		t.Errorf("Remaining() = %d, want 25000", counter.Remaining())
	}
}

func TestQuotaRepository_GetExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewQuotaRepository(db)

	rows := sqlmock.NewRows([]string{"provider", "period", "used", "limit_max", "updated_at"}).
		AddRow("pagespeed", "2024-06", 24999, 25000, time.Now())

	mock.ExpectQuery("SELECT provider, period, used, limit_max, updated_at").
		WithArgs("pagespeed", "2024-06").
		WillReturnRows(rows)

	counter, err := repo.Get(context.Background(), "pagespeed", "2024-06", 25000)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if counter.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", counter.Remaining())
	}
}
