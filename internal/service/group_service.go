package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type groupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	FindOpenBySiswa(ctx context.Context, siswaID string) (*models.Group, error)
	SearchAvailableSiswa(ctx context.Context, search string, excludeIDs []string, limit int) ([]models.SiswaDetail, error)
	RespondInvitation(ctx context.Context, groupID, siswaID string, status models.InvitationStatus) error
	ReplaceMembers(ctx context.Context, groupID, ownerSiswaID string, members []models.GroupMember) error
	SetStatus(ctx context.Context, id string, from, to models.GroupStatus, applicationID *string) error
	Delete(ctx context.Context, id string) error
}

type groupSiswaStore interface {
	GetByID(ctx context.Context, id string) (*models.Siswa, error)
	FindByNISN(ctx context.Context, nisn string) (*models.Siswa, error)
}

type groupApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	HasActive(ctx context.Context, siswaID, groupID string) (bool, error)
	SetStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error
}

// GroupService implements provisional group formation: invite, respond,
// submit-as-one, withdraw.
type GroupService struct {
	groups    groupStore
	siswa     groupSiswaStore
	apps      groupApplicationStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs the service.
func NewGroupService(groups groupStore, siswa groupSiswaStore, apps groupApplicationStore, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{groups: groups, siswa: siswa, apps: apps, validator: validate, logger: logger}
}

// Create opens a group and invites members by NISN. The owner and every
// invitee must be free: no open group membership and no active application.
func (s *GroupService) Create(ctx context.Context, ownerSiswaID string, req dto.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	if err := s.ensureFree(ctx, ownerSiswaID, "you"); err != nil {
		return nil, err
	}

	members, err := s.resolveInvitees(ctx, ownerSiswaID, req.InvitedNISNs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := &models.Group{
		ID:           uuid.NewString(),
		OwnerSiswaID: ownerSiswaID,
		Status:       models.GroupStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
		Members:      members,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}

	s.logger.Info("group created",
		zap.String("group_id", group.ID),
		zap.String("owner_siswa_id", ownerSiswaID),
		zap.Int("invited", len(members)))
	return group, nil
}

// Get loads a group with its roster; only the owner, an invited member, or a
// non-student role may read it.
func (s *GroupService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Group, error) {
	group, err := s.loadGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims != nil && claims.Role == models.RoleSiswa && !groupIncludes(group, claims.SiswaID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "group belongs to other students")
	}
	return group, nil
}

// Mine returns the caller's open group, if any.
func (s *GroupService) Mine(ctx context.Context, siswaID string) (*models.Group, error) {
	group, err := s.groups.FindOpenBySiswa(ctx, siswaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no open group")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// SearchMembers lists invitation candidates. Students already in an open group
// or holding an active application never appear; ExcludeIDs additionally drops
// locally-selected candidates so the picker cannot offer duplicates.
func (s *GroupService) SearchMembers(ctx context.Context, callerSiswaID string, query dto.MemberSearchQuery) ([]dto.MemberCandidate, error) {
	exclude := append([]string{callerSiswaID}, query.ExcludeIDs...)
	rows, err := s.groups.SearchAvailableSiswa(ctx, query.Search, exclude, 20)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search candidates")
	}
	candidates := make([]dto.MemberCandidate, 0, len(rows))
	for _, row := range rows {
		c := dto.MemberCandidate{SiswaID: row.ID, NISN: row.NISN, FullName: row.FullName}
		if row.KelasName != nil {
			c.Kelas = *row.KelasName
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Respond records an invited member's accept/decline. The update is guarded on
// the PENDING invitation so a second response conflicts instead of flipping.
func (s *GroupService) Respond(ctx context.Context, groupID, siswaID string, req dto.RespondInvitationRequest) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Status != models.GroupStatusOpen {
		return appErrors.Clone(appErrors.ErrConflict, "group is no longer open")
	}

	status := models.InvitationDeclined
	if req.Accept {
		// Accepting binds the member; the same freedom rules as at invite
		// time apply because their situation may have changed since. The
		// pending invitation itself already ties them to this group, so only
		// other groups count.
		if other, err := s.groups.FindOpenBySiswa(ctx, siswaID); err == nil {
			if other.ID != groupID {
				return appErrors.Clone(appErrors.ErrAlreadyInGroup, "you already belong to an open group")
			}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group membership")
		}
		active, err := s.apps.HasActive(ctx, siswaID, "")
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active applications")
		}
		if active {
			return appErrors.Clone(appErrors.ErrDuplicateApplication, "you already have an active application")
		}
		status = models.InvitationAccepted
	}

	if err := s.groups.RespondInvitation(ctx, groupID, siswaID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "invitation already responded or not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record response")
	}
	return nil
}

// UpdateMembers replaces the invited set before submission. Responses of
// re-invited members reset to pending.
func (s *GroupService) UpdateMembers(ctx context.Context, groupID, ownerSiswaID string, req dto.UpdateGroupMembersRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid members payload")
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerSiswaID != ownerSiswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the group owner may edit members")
	}
	if group.Status != models.GroupStatusOpen {
		return nil, appErrors.Clone(appErrors.ErrConflict, "members can only change while the group is open")
	}

	members, err := s.resolveInvitees(ctx, ownerSiswaID, req.InvitedNISNs)
	if err != nil {
		return nil, err
	}
	if err := s.groups.ReplaceMembers(ctx, groupID, ownerSiswaID, members); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace members")
	}
	return s.loadGroup(ctx, groupID)
}

// Submit converts a fully-accepted group into a single application covering
// all members. Every member must still be free of active applications at
// submission time.
func (s *GroupService) Submit(ctx context.Context, groupID, ownerSiswaID string, req dto.SubmitGroupApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerSiswaID != ownerSiswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the group owner may submit")
	}
	if group.Status != models.GroupStatusOpen {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group has already been submitted or withdrawn")
	}
	if !group.AllAccepted() {
		return nil, appErrors.Clone(appErrors.ErrGroupNotReady, "")
	}

	for _, siswaID := range groupSiswaIDs(group) {
		active, err := s.apps.HasActive(ctx, siswaID, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check member applications")
		}
		if active {
			return nil, appErrors.Clone(appErrors.ErrDuplicateApplication, "a group member already has an active application")
		}
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:                uuid.NewString(),
		GroupID:           &group.ID,
		IndustriID:        req.IndustriID,
		Status:            models.ApplicationStatusPending,
		Catatan:           req.Catatan,
		TanggalPermohonan: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group application")
	}

	if err := s.groups.SetStatus(ctx, groupID, models.GroupStatusOpen, models.GroupStatusSubmitted, &app.ID); err != nil {
		// The application exists but the group flip lost a race; surface the
		// conflict so the owner retries against fresh state.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "group state changed during submission")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark group submitted")
	}

	s.logger.Info("group application submitted",
		zap.String("group_id", groupID),
		zap.String("application_id", app.ID))
	return app, nil
}

// Withdraw cancels a submitted group before the decision. The application is
// closed as WITHDRAWN; the group reverts to OPEN with its membership intact,
// so the owner can adjust and submit again.
func (s *GroupService) Withdraw(ctx context.Context, groupID, ownerSiswaID string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerSiswaID != ownerSiswaID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the group owner may withdraw")
	}
	if group.Status != models.GroupStatusSubmitted || group.ApplicationID == nil {
		return appErrors.Clone(appErrors.ErrConflict, "group has no submitted application")
	}

	if err := s.apps.SetStatus(ctx, *group.ApplicationID, models.ApplicationStatusPending, models.ApplicationStatusWithdrawn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "application was already decided")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw application")
	}
	if err := s.groups.SetStatus(ctx, groupID, models.GroupStatusSubmitted, models.GroupStatusOpen, nil); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reopen group")
	}
	return nil
}

// Delete removes a group that was never submitted.
func (s *GroupService) Delete(ctx context.Context, groupID, ownerSiswaID string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerSiswaID != ownerSiswaID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the group owner may delete")
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "only open groups can be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	return nil
}

func (s *GroupService) loadGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// ensureFree rejects students who are already committed elsewhere.
func (s *GroupService) ensureFree(ctx context.Context, siswaID, who string) error {
	if _, err := s.groups.FindOpenBySiswa(ctx, siswaID); err == nil {
		return appErrors.Clone(appErrors.ErrAlreadyInGroup, who+" already belong to an open group")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group membership")
	}

	active, err := s.apps.HasActive(ctx, siswaID, "")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active applications")
	}
	if active {
		return appErrors.Clone(appErrors.ErrDuplicateApplication, who+" already have an active application")
	}
	return nil
}

func (s *GroupService) resolveInvitees(ctx context.Context, ownerSiswaID string, nisns []string) ([]models.GroupMember, error) {
	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(nisns))
	members := make([]models.GroupMember, 0, len(nisns))
	for _, nisn := range nisns {
		siswa, err := s.siswa.FindByNISN(ctx, nisn)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "no student with NISN "+nisn)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve NISN")
		}
		if siswa.ID == ownerSiswaID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cannot invite yourself")
		}
		if _, dup := seen[siswa.ID]; dup {
			continue
		}
		seen[siswa.ID] = struct{}{}
		if err := s.ensureFree(ctx, siswa.ID, siswa.FullName); err != nil {
			return nil, err
		}
		members = append(members, models.GroupMember{
			ID:        uuid.NewString(),
			SiswaID:   siswa.ID,
			Status:    models.InvitationPending,
			InvitedAt: now,
		})
	}
	return members, nil
}

func groupIncludes(group *models.Group, siswaID string) bool {
	if group.OwnerSiswaID == siswaID {
		return true
	}
	for _, m := range group.Members {
		if m.SiswaID == siswaID {
			return true
		}
	}
	return false
}

func groupSiswaIDs(group *models.Group) []string {
	ids := make([]string, 0, len(group.Members)+1)
	ids = append(ids, group.OwnerSiswaID)
	for _, m := range group.Members {
		ids = append(ids, m.SiswaID)
	}
	return ids
}
