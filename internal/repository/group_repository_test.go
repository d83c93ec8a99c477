package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/models"
)

func newGroupRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

// The candidate search must exclude group owners too: owners hold no member
// row, so the member-based clause alone would still offer them.
func TestSearchAvailableSiswaExcludesOwnersAndApplicants(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "nisn", "full_name", "kelas_id", "jurusan_id",
		"phone", "address", "active", "created_at", "updated_at", "kelas_name", "jurusan_name"}).
		AddRow("siswa-3", nil, "1003", "Citra", nil, nil, "", "", true, now, now, nil, nil)

	mock.ExpectQuery(`(?s)SELECT s\.id.*NOT EXISTS.*m\.siswa_id = s\.id.*NOT EXISTS.*g2\.owner_siswa_id = s\.id AND g2\.status IN \('OPEN', 'SUBMITTED'\).*NOT EXISTS.*FROM applications a.*a\.status IN \('PENDING', 'APPROVED'\)`).
		WithArgs("siswa-9").
		WillReturnRows(rows)

	found, err := repo.SearchAvailableSiswa(context.Background(), "", []string{"siswa-9"}, 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "siswa-3", found[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRespondInvitationGuardsPending(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	mock.ExpectExec(`UPDATE pkl_group_members SET`).
		WithArgs(models.InvitationAccepted, sqlmock.AnyArg(), "group-1", "siswa-2", models.InvitationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RespondInvitation(context.Background(), "group-1", "siswa-2", models.InvitationAccepted))

	// already responded: zero rows means the guard held
	mock.ExpectExec(`UPDATE pkl_group_members SET`).
		WithArgs(models.InvitationAccepted, sqlmock.AnyArg(), "group-1", "siswa-2", models.InvitationPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.RespondInvitation(context.Background(), "group-1", "siswa-2", models.InvitationAccepted)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
