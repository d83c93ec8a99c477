package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/models"
)

func newApplicationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestApplicationRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{SiswaID: ptr("siswa-1"), IndustriID: "ind-1", Catatan: "permohonan awal"}
	require.NoError(t, repo.Create(context.Background(), app))
	require.NotEmpty(t, app.ID)
	require.Equal(t, models.ApplicationStatusPending, app.Status)

	rows := sqlmock.NewRows([]string{"id", "siswa_id", "group_id", "industri_id", "status", "catatan", "kaprog_note", "pembimbing_guru_id", "tanggal_permohonan", "tanggal_mulai", "tanggal_selesai", "decided_at", "processed_by", "created_at", "updated_at"}).
		AddRow(app.ID, "siswa-1", nil, "ind-1", "PENDING", "permohonan awal", nil, nil, time.Now(), nil, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, siswa_id, group_id, industri_id")).
		WithArgs(app.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.Equal(t, app.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryDecideGuardsPending(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	params := DecideApplicationParams{
		ID:          "app-1",
		Status:      models.ApplicationStatusApproved,
		ProcessedBy: "guru-k",
		DecidedAt:   time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Decide(context.Background(), params))

	// a second decision matches zero rows because the status guard fails
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Decide(context.Background(), params)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySetStatusGuardsExpected(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status")).
		WithArgs(models.ApplicationStatusCompleted, sqlmock.AnyArg(), "app-1", models.ApplicationStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetStatus(context.Background(), "app-1", models.ApplicationStatusApproved, models.ApplicationStatusCompleted))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status")).
		WithArgs(models.ApplicationStatusCompleted, sqlmock.AnyArg(), "app-1", models.ApplicationStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SetStatus(context.Background(), "app-1", models.ApplicationStatusApproved, models.ApplicationStatusCompleted)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryReassignGuardsApproved(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	effective := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET industri_id")).
		WithArgs("ind-2", effective, sqlmock.AnyArg(), "app-1", models.ApplicationStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Reassign(context.Background(), "app-1", "ind-2", effective)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryHasActive(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()

	repo := NewApplicationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM applications")).
		WithArgs("siswa-1", "siswa-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active, err := repo.HasActive(context.Background(), "siswa-1", "")
	require.NoError(t, err)
	require.True(t, active)

	_, err = repo.HasActive(context.Background(), "", "")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }
