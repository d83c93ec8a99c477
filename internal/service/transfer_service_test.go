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
	"github.com/maganghub/maganghub-api/internal/repository"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type transferStoreFake struct {
	transfers map[string]*models.Transfer
	open      bool
}

func newTransferStoreFake() *transferStoreFake {
	return &transferStoreFake{transfers: map[string]*models.Transfer{}}
}

func (s *transferStoreFake) Create(ctx context.Context, transfer *models.Transfer) error {
	s.transfers[transfer.ID] = transfer
	return nil
}

func (s *transferStoreFake) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	if tr, ok := s.transfers[id]; ok {
		copied := *tr
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *transferStoreFake) HasOpen(ctx context.Context, siswaID string) (bool, error) {
	return s.open, nil
}

func (s *transferStoreFake) List(ctx context.Context, filter models.TransferFilter, pageSize int) ([]models.Transfer, int, error) {
	return nil, 0, nil
}

func (s *transferStoreFake) Advance(ctx context.Context, params repository.AdvanceParams) error {
	tr, ok := s.transfers[params.ID]
	if !ok || tr.Status != params.Expected {
		return sql.ErrNoRows
	}
	tr.Status = params.Next
	tr.TanggalEfektif = params.TanggalEfektif
	return nil
}

type transferAppFake struct {
	apps       map[string]*models.Application
	reassigned []string
}

func (s *transferAppFake) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

func (s *transferAppFake) Reassign(ctx context.Context, id, industriID string, effective time.Time) error {
	app, ok := s.apps[id]
	if !ok || app.Status != models.ApplicationStatusApproved {
		return sql.ErrNoRows
	}
	app.IndustriID = industriID
	s.reassigned = append(s.reassigned, id)
	return nil
}

type documentStoreFake struct {
	saved []string
}

func (s *documentStoreFake) Save(prefix, ext string, data []byte) (string, error) {
	name := prefix + "/doc" + ext
	s.saved = append(s.saved, name)
	return name, nil
}

func pembimbingClaims(guruID string) *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleGuru, GuruID: guruID, Flags: &models.RoleFlags{IsPembimbing: true}}
}

func kaprogClaims(guruID string) *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleGuru, GuruID: guruID, Flags: &models.RoleFlags{IsKaprog: true}}
}

func koordinatorClaims(guruID string) *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleGuru, GuruID: guruID, Flags: &models.RoleFlags{IsKoordinator: true}}
}

func seededTransferService(t *testing.T) (*TransferService, *transferStoreFake, *transferAppFake) {
	t.Helper()
	siswaID, pembimbingID := "siswa-1", "guru-p"
	apps := &transferAppFake{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", SiswaID: &siswaID, IndustriID: "ind-1", Status: models.ApplicationStatusApproved, PembimbingGuruID: &pembimbingID},
	}}
	transfers := newTransferStoreFake()
	transfers.transfers["tr-1"] = &models.Transfer{
		ID: "tr-1", ApplicationID: "app-1", SiswaID: siswaID,
		TargetIndustri: "ind-2", Status: models.TransferPendingPembimbing,
	}
	svc := NewTransferService(transfers, apps, siswaStoreStub{}, approvedIndustri("ind-2"), &documentStoreFake{}, nil, nil, nil, nil, 0)
	return svc, transfers, apps
}

func TestTransferCreate(t *testing.T) {
	siswaID := "siswa-1"
	apps := &transferAppFake{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", SiswaID: &siswaID, IndustriID: "ind-1", Status: models.ApplicationStatusApproved},
	}}
	docs := &documentStoreFake{}
	svc := NewTransferService(newTransferStoreFake(), apps, siswaStoreStub{}, approvedIndustri("ind-2"), docs, nil, nil, nil, nil, 0)

	tr, err := svc.Create(context.Background(), siswaID, dto.CreateTransferRequest{
		ApplicationID: "app-1", TargetIndustriID: "ind-2", Catatan: "jarak terlalu jauh",
	}, []byte("pdf-bytes"), ".pdf")
	require.NoError(t, err)
	assert.Equal(t, models.TransferPendingPembimbing, tr.Status)
	require.NotNil(t, tr.DocumentURL)
	assert.Equal(t, []string{"pindah/doc.pdf"}, docs.saved)
}

func TestTransferCreateSameIndustri(t *testing.T) {
	siswaID := "siswa-1"
	apps := &transferAppFake{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", SiswaID: &siswaID, IndustriID: "ind-2", Status: models.ApplicationStatusApproved},
	}}
	svc := NewTransferService(newTransferStoreFake(), apps, siswaStoreStub{}, approvedIndustri("ind-2"), &documentStoreFake{}, nil, nil, nil, nil, 0)

	_, err := svc.Create(context.Background(), siswaID, dto.CreateTransferRequest{
		ApplicationID: "app-1", TargetIndustriID: "ind-2", Catatan: "x",
	}, nil, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTransferCreateOpenRequestBlocks(t *testing.T) {
	siswaID := "siswa-1"
	apps := &transferAppFake{apps: map[string]*models.Application{
		"app-1": {ID: "app-1", SiswaID: &siswaID, IndustriID: "ind-1", Status: models.ApplicationStatusApproved},
	}}
	transfers := newTransferStoreFake()
	transfers.open = true
	svc := NewTransferService(transfers, apps, siswaStoreStub{}, approvedIndustri("ind-2"), &documentStoreFake{}, nil, nil, nil, nil, 0)

	_, err := svc.Create(context.Background(), siswaID, dto.CreateTransferRequest{
		ApplicationID: "app-1", TargetIndustriID: "ind-2", Catatan: "x",
	}, nil, "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestTransferChainFullApproval(t *testing.T) {
	svc, _, apps := seededTransferService(t)

	tr, err := svc.Decide(context.Background(), "tr-1", pembimbingClaims("guru-p"), dto.DecideTransferRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.TransferPendingKaprog, tr.Status)

	tr, err = svc.Decide(context.Background(), "tr-1", kaprogClaims("guru-k"), dto.DecideTransferRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.TransferPendingKoordinator, tr.Status)

	tr, err = svc.Decide(context.Background(), "tr-1", koordinatorClaims("guru-c"), dto.DecideTransferRequest{
		Status: "approved", TanggalEfektif: "2026-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferApproved, tr.Status)

	// final approval rewires the placement
	assert.Equal(t, []string{"app-1"}, apps.reassigned)
	assert.Equal(t, "ind-2", apps.apps["app-1"].IndustriID)
}

func TestTransferDecideOutOfTurn(t *testing.T) {
	svc, _, _ := seededTransferService(t)

	// koordinator cannot decide the pembimbing link
	_, err := svc.Decide(context.Background(), "tr-1", koordinatorClaims("guru-c"), dto.DecideTransferRequest{Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrWrongTurn))
}

func TestTransferDecideWrongPembimbing(t *testing.T) {
	svc, _, _ := seededTransferService(t)

	_, err := svc.Decide(context.Background(), "tr-1", pembimbingClaims("guru-other"), dto.DecideTransferRequest{Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestTransferFinalApprovalNeedsEffectiveDate(t *testing.T) {
	svc, transfers, _ := seededTransferService(t)
	transfers.transfers["tr-1"].Status = models.TransferPendingKoordinator

	_, err := svc.Decide(context.Background(), "tr-1", koordinatorClaims("guru-c"), dto.DecideTransferRequest{Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestTransferRejectionTerminal(t *testing.T) {
	svc, _, apps := seededTransferService(t)

	tr, err := svc.Decide(context.Background(), "tr-1", pembimbingClaims("guru-p"), dto.DecideTransferRequest{
		Status: "rejected", Catatan: "belum waktunya",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransferRejected, tr.Status)
	assert.Empty(t, apps.reassigned)

	// the chain never moves again
	_, err = svc.Decide(context.Background(), "tr-1", kaprogClaims("guru-k"), dto.DecideTransferRequest{Status: "approved"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyDecided))
}

func TestTransferRejectionRequiresNote(t *testing.T) {
	svc, _, _ := seededTransferService(t)

	_, err := svc.Decide(context.Background(), "tr-1", pembimbingClaims("guru-p"), dto.DecideTransferRequest{Status: "rejected"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
