package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type groupStoreFake struct {
	groups map[string]*models.Group
	open   map[string]string // siswaID -> groupID
}

func newGroupStoreFake() *groupStoreFake {
	return &groupStoreFake{groups: map[string]*models.Group{}, open: map[string]string{}}
}

func (s *groupStoreFake) Create(ctx context.Context, group *models.Group) error {
	s.groups[group.ID] = group
	s.open[group.OwnerSiswaID] = group.ID
	for _, m := range group.Members {
		s.open[m.SiswaID] = group.ID
	}
	return nil
}

func (s *groupStoreFake) GetByID(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (s *groupStoreFake) FindOpenBySiswa(ctx context.Context, siswaID string) (*models.Group, error) {
	if id, ok := s.open[siswaID]; ok {
		if g := s.groups[id]; g != nil && g.Status == models.GroupStatusOpen {
			return g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *groupStoreFake) SearchAvailableSiswa(ctx context.Context, search string, excludeIDs []string, limit int) ([]models.SiswaDetail, error) {
	return nil, nil
}

func (s *groupStoreFake) RespondInvitation(ctx context.Context, groupID, siswaID string, status models.InvitationStatus) error {
	g, ok := s.groups[groupID]
	if !ok {
		return sql.ErrNoRows
	}
	for i := range g.Members {
		if g.Members[i].SiswaID == siswaID && g.Members[i].Status == models.InvitationPending {
			g.Members[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *groupStoreFake) ReplaceMembers(ctx context.Context, groupID, ownerSiswaID string, members []models.GroupMember) error {
	g, ok := s.groups[groupID]
	if !ok {
		return sql.ErrNoRows
	}
	g.Members = members
	return nil
}

func (s *groupStoreFake) SetStatus(ctx context.Context, id string, from, to models.GroupStatus, applicationID *string) error {
	g, ok := s.groups[id]
	if !ok || g.Status != from {
		return sql.ErrNoRows
	}
	g.Status = to
	if applicationID != nil {
		g.ApplicationID = applicationID
	}
	return nil
}

func (s *groupStoreFake) Delete(ctx context.Context, id string) error {
	g, ok := s.groups[id]
	if !ok || g.Status != models.GroupStatusOpen {
		return sql.ErrNoRows
	}
	delete(s.groups, id)
	return nil
}

type groupSiswaFake struct {
	byNISN map[string]*models.Siswa
}

func (s groupSiswaFake) GetByID(ctx context.Context, id string) (*models.Siswa, error) {
	for _, row := range s.byNISN {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s groupSiswaFake) FindByNISN(ctx context.Context, nisn string) (*models.Siswa, error) {
	if row, ok := s.byNISN[nisn]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

type groupAppFake struct {
	activeSiswa map[string]bool
	apps        map[string]*models.Application
}

func (s *groupAppFake) Create(ctx context.Context, app *models.Application) error {
	if s.apps == nil {
		s.apps = map[string]*models.Application{}
	}
	s.apps[app.ID] = app
	return nil
}

func (s *groupAppFake) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

func (s *groupAppFake) HasActive(ctx context.Context, siswaID, groupID string) (bool, error) {
	return s.activeSiswa[siswaID], nil
}

func (s *groupAppFake) SetStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	app, ok := s.apps[id]
	if !ok || app.Status != from {
		return sql.ErrNoRows
	}
	app.Status = to
	return nil
}

func rosterFake() groupSiswaFake {
	return groupSiswaFake{byNISN: map[string]*models.Siswa{
		"1001": {ID: "siswa-1", NISN: "1001", FullName: "Andi"},
		"1002": {ID: "siswa-2", NISN: "1002", FullName: "Budi"},
		"1003": {ID: "siswa-3", NISN: "1003", FullName: "Citra"},
	}}
}

func TestGroupCreateInvites(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002", "1003", "1002"}})
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusOpen, group.Status)
	// duplicate NISN collapses
	require.Len(t, group.Members, 2)
	assert.Equal(t, models.InvitationPending, group.Members[0].Status)
}

func TestGroupCreateSelfInviteRejected(t *testing.T) {
	svc := NewGroupService(newGroupStoreFake(), rosterFake(), &groupAppFake{}, nil, nil)

	_, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1001"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestGroupCreateInviteeAlreadyBusy(t *testing.T) {
	apps := &groupAppFake{activeSiswa: map[string]bool{"siswa-2": true}}
	svc := NewGroupService(newGroupStoreFake(), rosterFake(), apps, nil, nil)

	_, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateApplication))
}

func TestGroupCreateOwnerAlreadyGrouped(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	_, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1003"}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyInGroup))
}

func TestGroupSubmitRequiresAllAccepted(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002", "1003"}})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), group.ID, "siswa-1", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrGroupNotReady))
	assert.Equal(t, 412, appErrors.FromError(err).Status)
}

func TestGroupSubmitAfterAllAccept(t *testing.T) {
	groups := newGroupStoreFake()
	apps := &groupAppFake{}
	svc := NewGroupService(groups, rosterFake(), apps, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002", "1003"}})
	require.NoError(t, err)

	require.NoError(t, svc.Respond(context.Background(), group.ID, "siswa-2", dto.RespondInvitationRequest{Accept: true}))
	require.NoError(t, svc.Respond(context.Background(), group.ID, "siswa-3", dto.RespondInvitationRequest{Accept: true}))

	app, err := svc.Submit(context.Background(), group.ID, "siswa-1", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.NoError(t, err)
	require.NotNil(t, app.GroupID)
	assert.Equal(t, group.ID, *app.GroupID)
	assert.Equal(t, models.GroupStatusSubmitted, groups.groups[group.ID].Status)
}

func TestGroupSubmitNotOwner(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), group.ID, "siswa-2", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestGroupRespondTwiceConflicts(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.NoError(t, err)

	require.NoError(t, svc.Respond(context.Background(), group.ID, "siswa-2", dto.RespondInvitationRequest{Accept: false}))

	err = svc.Respond(context.Background(), group.ID, "siswa-2", dto.RespondInvitationRequest{Accept: true})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestGroupWithdrawClosesApplication(t *testing.T) {
	groups := newGroupStoreFake()
	apps := &groupAppFake{}
	svc := NewGroupService(groups, rosterFake(), apps, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.NoError(t, err)
	require.NoError(t, svc.Respond(context.Background(), group.ID, "siswa-2", dto.RespondInvitationRequest{Accept: true}))

	app, err := svc.Submit(context.Background(), group.ID, "siswa-1", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Withdraw(context.Background(), group.ID, "siswa-1"))
	assert.Equal(t, models.ApplicationStatusWithdrawn, apps.apps[app.ID].Status)
	assert.Equal(t, models.GroupStatusOpen, groups.groups[group.ID].Status)

	// withdrawing again conflicts
	err = svc.Withdraw(context.Background(), group.ID, "siswa-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	// the reopened group can be fixed up and submitted again
	_, err = svc.Submit(context.Background(), group.ID, "siswa-1", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.NoError(t, err)
}

func TestGroupDeleteOnlyOpen(t *testing.T) {
	groups := newGroupStoreFake()
	svc := NewGroupService(groups, rosterFake(), &groupAppFake{}, nil, nil)

	group, err := svc.Create(context.Background(), "siswa-1", dto.CreateGroupRequest{InvitedNISNs: []string{"1002"}})
	require.NoError(t, err)
	require.NoError(t, svc.Respond(context.Background(), group.ID, "siswa-2", dto.RespondInvitationRequest{Accept: true}))
	_, err = svc.Submit(context.Background(), group.ID, "siswa-1", dto.SubmitGroupApplicationRequest{IndustriID: "ind-1"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), group.ID, "siswa-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}
