package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	"github.com/maganghub/maganghub-api/internal/repository"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type applicationStoreStub struct {
	apps      map[string]*models.Application
	active    bool
	decideErr error
	decided   []repository.DecideApplicationParams
}

func (s *applicationStoreStub) Create(ctx context.Context, app *models.Application) error {
	if s.apps == nil {
		s.apps = make(map[string]*models.Application)
	}
	s.apps[app.ID] = app
	return nil
}

func (s *applicationStoreStub) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationStoreStub) HasActive(ctx context.Context, siswaID, groupID string) (bool, error) {
	return s.active, nil
}

func (s *applicationStoreStub) List(ctx context.Context, filter models.ApplicationFilter, pageSize int) ([]models.ApplicationDetail, int, error) {
	return nil, 0, nil
}

func (s *applicationStoreStub) Decide(ctx context.Context, params repository.DecideApplicationParams) error {
	if s.decideErr != nil {
		return s.decideErr
	}
	app, ok := s.apps[params.ID]
	if !ok || app.Status != models.ApplicationStatusPending {
		return sql.ErrNoRows
	}
	app.Status = params.Status
	app.ProcessedBy = &params.ProcessedBy
	app.KaprogNote = params.KaprogNote
	app.PembimbingGuruID = params.PembimbingGuruID
	app.TanggalMulai = params.TanggalMulai
	app.TanggalSelesai = params.TanggalSelesai
	app.DecidedAt = &params.DecidedAt
	s.decided = append(s.decided, params)
	return nil
}

func (s *applicationStoreStub) SetStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	app, ok := s.apps[id]
	if !ok || app.Status != from {
		return sql.ErrNoRows
	}
	app.Status = to
	return nil
}

type siswaStoreStub struct {
	rows map[string]*models.Siswa
}

func (s siswaStoreStub) GetByID(ctx context.Context, id string) (*models.Siswa, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

type groupStoreStub struct {
	groups map[string]*models.Group
}

func (s groupStoreStub) GetByID(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

type industriStoreStub struct {
	rows map[string]*models.Industri
}

func (s industriStoreStub) GetIndustri(ctx context.Context, id string) (*models.Industri, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

type publisherStub struct {
	userIDs []string
	events  []models.Event
}

func (p *publisherStub) Publish(ctx context.Context, userIDs []string, event models.Event) {
	p.userIDs = append(p.userIDs, userIDs...)
	p.events = append(p.events, event)
}

func approvedIndustri(id string) industriStoreStub {
	return industriStoreStub{rows: map[string]*models.Industri{
		id: {ID: id, Status: models.IndustriStatusApproved},
	}}
}

func TestApplicationSubmit(t *testing.T) {
	store := &applicationStoreStub{}
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	app, err := svc.Submit(context.Background(), "siswa-1", dto.SubmitApplicationRequest{IndustriID: "ind-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	require.NotNil(t, app.SiswaID)
	assert.Equal(t, "siswa-1", *app.SiswaID)
}

func TestApplicationSubmitDuplicateBlocked(t *testing.T) {
	store := &applicationStoreStub{active: true}
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	_, err := svc.Submit(context.Background(), "siswa-1", dto.SubmitApplicationRequest{IndustriID: "ind-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateApplication))
}

func TestApplicationSubmitUnapprovedIndustri(t *testing.T) {
	industri := industriStoreStub{rows: map[string]*models.Industri{
		"ind-1": {ID: "ind-1", Status: models.IndustriStatusPending},
	}}
	svc := NewApplicationService(&applicationStoreStub{}, siswaStoreStub{}, groupStoreStub{}, industri, nil, nil, nil, nil, 0)

	_, err := svc.Submit(context.Background(), "siswa-1", dto.SubmitApplicationRequest{IndustriID: "ind-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestApplicationDecideApprove(t *testing.T) {
	userID := "user-1"
	store := &applicationStoreStub{}
	siswaID := "siswa-1"
	require.NoError(t, store.Create(context.Background(), &models.Application{
		ID: "app-1", SiswaID: &siswaID, IndustriID: "ind-1", Status: models.ApplicationStatusPending,
	}))
	siswa := siswaStoreStub{rows: map[string]*models.Siswa{
		siswaID: {ID: siswaID, UserID: &userID},
	}}
	publisher := &publisherStub{}
	svc := NewApplicationService(store, siswa, groupStoreStub{}, approvedIndustri("ind-1"), publisher, nil, nil, nil, 0)

	app, err := svc.Decide(context.Background(), "app-1", "guru-1", dto.DecideApplicationRequest{
		Status:           "approved",
		PembimbingGuruID: "guru-2",
		TanggalMulai:     "2026-01-05",
		TanggalSelesai:   "2026-04-05",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	require.NotNil(t, app.PembimbingGuruID)
	assert.Equal(t, "guru-2", *app.PembimbingGuruID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventPKLApproved, publisher.events[0].Type)
	assert.Equal(t, []string{userID}, publisher.userIDs)
}

func TestApplicationDecideTwiceConflicts(t *testing.T) {
	store := &applicationStoreStub{}
	siswaID := "siswa-1"
	require.NoError(t, store.Create(context.Background(), &models.Application{
		ID: "app-1", SiswaID: &siswaID, Status: models.ApplicationStatusPending,
	}))
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	_, err := svc.Decide(context.Background(), "app-1", "guru-1", dto.DecideApplicationRequest{
		Status: "rejected", KaprogNote: "kuota penuh",
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "app-1", "guru-1", dto.DecideApplicationRequest{
		Status:           "approved",
		PembimbingGuruID: "guru-2",
		TanggalMulai:     "2026-01-05",
		TanggalSelesai:   "2026-04-05",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyDecided))
	assert.Contains(t, appErrors.FromError(err).Message, "REJECTED")
}

func TestApplicationDecideValidation(t *testing.T) {
	store := &applicationStoreStub{}
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	cases := []dto.DecideApplicationRequest{
		{Status: "approved"}, // no supervisor
		{Status: "approved", PembimbingGuruID: "guru-2", TanggalMulai: "2026-04-05", TanggalSelesai: "2026-01-05"},
		{Status: "rejected"}, // no note
		{Status: "banana"},
	}
	for _, req := range cases {
		_, err := svc.Decide(context.Background(), "app-1", "guru-1", req)
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
	assert.Empty(t, store.decided)
}

func TestApplicationCompleteRequiresApproved(t *testing.T) {
	store := &applicationStoreStub{}
	siswaID := "siswa-1"
	require.NoError(t, store.Create(context.Background(), &models.Application{
		ID: "app-1", SiswaID: &siswaID, Status: models.ApplicationStatusPending,
	}))
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	err := svc.Complete(context.Background(), "app-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	store.apps["app-1"].Status = models.ApplicationStatusApproved
	require.NoError(t, svc.Complete(context.Background(), "app-1"))
	assert.Equal(t, models.ApplicationStatusCompleted, store.apps["app-1"].Status)
}

func TestApplicationGetScopesStudents(t *testing.T) {
	store := &applicationStoreStub{}
	owner := "siswa-1"
	require.NoError(t, store.Create(context.Background(), &models.Application{
		ID: "app-1", SiswaID: &owner, Status: models.ApplicationStatusPending,
	}))
	svc := NewApplicationService(store, siswaStoreStub{}, groupStoreStub{}, approvedIndustri("ind-1"), nil, nil, nil, nil, 0)

	_, err := svc.Get(context.Background(), "app-1", &models.JWTClaims{Role: models.RoleSiswa, SiswaID: "siswa-2"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	app, err := svc.Get(context.Background(), "app-1", &models.JWTClaims{Role: models.RoleSiswa, SiswaID: owner})
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
}

func TestApplicationDecideGroupFanOut(t *testing.T) {
	store := &applicationStoreStub{}
	groupID := "group-1"
	require.NoError(t, store.Create(context.Background(), &models.Application{
		ID: "app-1", GroupID: &groupID, Status: models.ApplicationStatusPending,
	}))
	ownerUser, memberUser := "user-1", "user-2"
	siswa := siswaStoreStub{rows: map[string]*models.Siswa{
		"siswa-1": {ID: "siswa-1", UserID: &ownerUser},
		"siswa-2": {ID: "siswa-2", UserID: &memberUser},
	}}
	groups := groupStoreStub{groups: map[string]*models.Group{
		groupID: {
			ID:           groupID,
			OwnerSiswaID: "siswa-1",
			Members: []models.GroupMember{
				{SiswaID: "siswa-2", Status: models.InvitationAccepted},
				{SiswaID: "siswa-3", Status: models.InvitationDeclined},
			},
		},
	}}
	publisher := &publisherStub{}
	svc := NewApplicationService(store, siswa, groups, approvedIndustri("ind-1"), publisher, nil, nil, nil, 0)

	_, err := svc.Decide(context.Background(), "app-1", "guru-1", dto.DecideApplicationRequest{
		Status:           "approved",
		PembimbingGuruID: "guru-2",
		TanggalMulai:     "2026-01-05",
		TanggalSelesai:   "2026-04-05",
	})
	require.NoError(t, err)

	// declined member never hears about it
	assert.ElementsMatch(t, []string{ownerUser, memberUser}, publisher.userIDs)
}
