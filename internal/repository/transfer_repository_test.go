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

func newTransferRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTransferRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newTransferRepoMock(t)
	defer cleanup()

	repo := NewTransferRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transfers")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	transfer := &models.Transfer{ApplicationID: "app-1", SiswaID: "siswa-1", TargetIndustri: "ind-2", Catatan: "lingkungan kerja"}
	require.NoError(t, repo.Create(context.Background(), transfer))
	require.NotEmpty(t, transfer.ID)
	require.Equal(t, models.TransferPendingPembimbing, transfer.Status)
	require.JSONEq(t, "[]", string(transfer.DecisionNotes))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepositoryAdvanceGuardsExpectedStatus(t *testing.T) {
	db, mock, cleanup := newTransferRepoMock(t)
	defer cleanup()

	repo := NewTransferRepository(db)
	params := AdvanceParams{
		ID:       "tr-1",
		Expected: models.TransferPendingPembimbing,
		Next:     models.TransferPendingKaprog,
		Decision: models.TransferDecision{Hat: models.HatPembimbing, ActorID: "guru-p", Status: models.TransferPendingKaprog, DecidedAt: time.Now().UTC()},
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transfers SET")).
		WithArgs(params.Next, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), "tr-1", params.Expected).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Advance(context.Background(), params))

	// chain already moved on, the guard matches nothing
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transfers SET")).
		WithArgs(params.Next, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), "tr-1", params.Expected).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Advance(context.Background(), params)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepositoryHasOpen(t *testing.T) {
	db, mock, cleanup := newTransferRepoMock(t)
	defer cleanup()

	repo := NewTransferRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM transfers")).
		WithArgs("siswa-1", models.TransferApproved, models.TransferRejected).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	open, err := repo.HasOpen(context.Background(), "siswa-1")
	require.NoError(t, err)
	require.False(t, open)
	require.NoError(t, mock.ExpectationsWereMet())
}
