package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/imaging"
)

type leaveStoreFake struct {
	leaves     map[string]*models.Leave
	lastFilter models.LeaveFilter
}

func (f *leaveStoreFake) Create(_ context.Context, leave *models.Leave) error {
	f.leaves[leave.ID] = leave
	return nil
}

func (f *leaveStoreFake) GetByID(_ context.Context, id string) (*models.Leave, error) {
	leave, ok := f.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *leave
	return &copied, nil
}

func (f *leaveStoreFake) List(_ context.Context, filter models.LeaveFilter, _ int) ([]models.Leave, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *leaveStoreFake) Decide(_ context.Context, id string, status models.LeaveStatus, reason *string, decidedAt time.Time) error {
	leave, ok := f.leaves[id]
	if !ok || leave.Status != models.LeaveStatusPending {
		return sql.ErrNoRows
	}
	leave.Status = status
	leave.RejectionReason = reason
	leave.DecidedAt = &decidedAt
	return nil
}

func (f *leaveStoreFake) UpdatePending(_ context.Context, leave *models.Leave) error {
	current, ok := f.leaves[leave.ID]
	if !ok || current.Status != models.LeaveStatusPending {
		return sql.ErrNoRows
	}
	f.leaves[leave.ID] = leave
	return nil
}

func (f *leaveStoreFake) DeletePending(_ context.Context, id string) error {
	leave, ok := f.leaves[id]
	if !ok || leave.Status != models.LeaveStatusPending {
		return sql.ErrNoRows
	}
	delete(f.leaves, id)
	return nil
}

type leaveAppFake struct {
	placements map[string]*models.Application
}

func (f *leaveAppFake) FindApprovedBySiswa(_ context.Context, siswaID string) (*models.Application, error) {
	app, ok := f.placements[siswaID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return app, nil
}

func newLeaveService(t *testing.T) (*LeaveService, *leaveStoreFake) {
	t.Helper()
	guruID := "guru-p"
	siswaID := "siswa-1"
	store := &leaveStoreFake{leaves: map[string]*models.Leave{}}
	apps := &leaveAppFake{placements: map[string]*models.Application{
		"siswa-1": {ID: "app-1", SiswaID: &siswaID, Status: models.ApplicationStatusApproved, PembimbingGuruID: &guruID},
	}}
	uploader := NewPhotoUploader(imaging.NewProcessor(0, 0), &photoStorageFake{}, nil, 0)
	return NewLeaveService(store, apps, uploader, nil, nil, 0), store
}

func createLeave(t *testing.T, svc *LeaveService) *models.Leave {
	t.Helper()
	leave, err := svc.Create(context.Background(), "siswa-1", dto.CreateLeaveRequest{
		Jenis: "sakit", Tanggal: "2026-03-02", Keterangan: "demam tinggi",
	}, [][]byte{testPhotoPNG(t)})
	require.NoError(t, err)
	return leave
}

func TestLeaveCreateAddressesAssignedPembimbing(t *testing.T) {
	svc, store := newLeaveService(t)

	leave := createLeave(t, svc)

	assert.Equal(t, models.LeaveStatusPending, leave.Status)
	assert.Equal(t, models.LeaveJenisSakit, leave.Jenis)
	assert.Equal(t, "guru-p", leave.PembimbingID)
	assert.Len(t, leave.BuktiFotoURLs, 1)
	assert.Contains(t, store.leaves, leave.ID)
}

func TestLeaveCreateWithoutPlacement(t *testing.T) {
	svc, _ := newLeaveService(t)

	_, err := svc.Create(context.Background(), "siswa-9", dto.CreateLeaveRequest{
		Jenis: "izin", Tanggal: "2026-03-02", Keterangan: "acara keluarga",
	}, [][]byte{testPhotoPNG(t)})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestLeaveCreateRejectsUnknownJenis(t *testing.T) {
	svc, _ := newLeaveService(t)

	_, err := svc.Create(context.Background(), "siswa-1", dto.CreateLeaveRequest{
		Jenis: "liburan", Tanggal: "2026-03-02", Keterangan: "x",
	}, [][]byte{testPhotoPNG(t)})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLeaveUpdateOnlyWhilePending(t *testing.T) {
	svc, store := newLeaveService(t)
	leave := createLeave(t, svc)

	_, err := svc.Update(context.Background(), leave.ID, "siswa-2", dto.UpdateLeaveRequest{Keterangan: "diperbarui"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	updated, err := svc.Update(context.Background(), leave.ID, "siswa-1", dto.UpdateLeaveRequest{Jenis: "izin", Keterangan: "diperbarui"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveJenisIzin, updated.Jenis)
	assert.Equal(t, "diperbarui", updated.Keterangan)

	store.leaves[leave.ID].Status = models.LeaveStatusApproved
	_, err = svc.Update(context.Background(), leave.ID, "siswa-1", dto.UpdateLeaveRequest{Keterangan: "terlambat"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyDecided))
}

func TestLeaveDecideIsOneShot(t *testing.T) {
	svc, _ := newLeaveService(t)
	leave := createLeave(t, svc)

	decided, err := svc.Decide(context.Background(), leave.ID, "guru-p", dto.DecideLeaveRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	_, err = svc.Decide(context.Background(), leave.ID, "guru-p", dto.DecideLeaveRequest{Status: "rejected", RejectionReason: "telat"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyDecided))
}

func TestLeaveDecideWrongTeacher(t *testing.T) {
	svc, _ := newLeaveService(t)
	leave := createLeave(t, svc)

	_, err := svc.Decide(context.Background(), leave.ID, "guru-x", dto.DecideLeaveRequest{Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestLeaveRejectionRequiresReason(t *testing.T) {
	svc, _ := newLeaveService(t)
	leave := createLeave(t, svc)

	_, err := svc.Decide(context.Background(), leave.ID, "guru-p", dto.DecideLeaveRequest{Status: "rejected"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLeaveDeleteOnlyWhilePending(t *testing.T) {
	svc, store := newLeaveService(t)
	leave := createLeave(t, svc)

	store.leaves[leave.ID].Status = models.LeaveStatusRejected
	err := svc.Delete(context.Background(), leave.ID, "siswa-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyDecided))

	store.leaves[leave.ID].Status = models.LeaveStatusPending
	require.NoError(t, svc.Delete(context.Background(), leave.ID, "siswa-1"))
	assert.NotContains(t, store.leaves, leave.ID)
}

func TestLeaveListScopes(t *testing.T) {
	svc, store := newLeaveService(t)

	_, _, err := svc.List(context.Background(), &models.JWTClaims{Role: models.RoleSiswa, SiswaID: "siswa-1"}, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "siswa-1", store.lastFilter.SiswaID)

	_, _, err = svc.List(context.Background(), &models.JWTClaims{
		Role: models.RoleGuru, GuruID: "guru-p",
		Flags: &models.RoleFlags{IsPembimbing: true},
	}, []models.LeaveStatus{models.LeaveStatusPending}, 1)
	require.NoError(t, err)
	assert.Equal(t, "guru-p", store.lastFilter.PembimbingID)
	assert.Empty(t, store.lastFilter.SiswaID)
}
