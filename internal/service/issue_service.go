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

type issueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter, pageSize int) ([]models.Issue, int, error)
	Update(ctx context.Context, id string, status models.IssueStatus, tindakLanjut *string, resolvedAt *time.Time) error
}

type issueSiswaStore interface {
	GetByID(ctx context.Context, id string) (*models.Siswa, error)
}

// IssueService implements permasalahan tracking: the pembimbing raises and
// progresses issues, the homeroom teacher reads their class's issues.
type IssueService struct {
	issues    issueStore
	siswa     issueSiswaStore
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewIssueService constructs the service.
func NewIssueService(issues issueStore, siswa issueSiswaStore, validate *validator.Validate, logger *zap.Logger, pageSize int) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &IssueService{issues: issues, siswa: siswa, validator: validate, logger: logger, pageSize: pageSize}
}

// Create raises an issue about a student.
func (s *IssueService) Create(ctx context.Context, pembimbingID string, req dto.CreateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	kategori, ok := models.ValidIssueKategori(req.Kategori)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown kategori")
	}
	if _, err := s.siswa.GetByID(ctx, req.SiswaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := time.Now().UTC()
	issue := &models.Issue{
		ID:           uuid.NewString(),
		Judul:        req.Judul,
		Deskripsi:    req.Deskripsi,
		Kategori:     kategori,
		Status:       models.IssueStatusOpen,
		SiswaID:      req.SiswaID,
		PembimbingID: pembimbingID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}
	return issue, nil
}

// Update progresses the follow-up state. Only the raising pembimbing edits;
// resolving stamps the resolution time.
func (s *IssueService) Update(ctx context.Context, id, pembimbingID string, req dto.UpdateIssueRequest) (*models.Issue, error) {
	issue, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.PembimbingID != pembimbingID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "issue was raised by another teacher")
	}

	status := issue.Status
	if req.Status != "" {
		switch models.IssueStatus(req.Status) {
		case models.IssueStatusOpen, models.IssueStatusInProgress, models.IssueStatusResolved:
			status = models.IssueStatus(req.Status)
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
		}
	}

	var tindakLanjut *string
	if req.TindakLanjut != "" {
		tindakLanjut = &req.TindakLanjut
	}
	var resolvedAt *time.Time
	if status == models.IssueStatusResolved && issue.Status != models.IssueStatusResolved {
		now := time.Now().UTC()
		resolvedAt = &now
	}

	if err := s.issues.Update(ctx, id, status, tindakLanjut, resolvedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update issue")
	}
	return s.load(ctx, id)
}

// Get loads one issue with per-role visibility rules.
func (s *IssueService) Get(ctx context.Context, id string, claims *models.JWTClaims, kelasID string) (*models.Issue, error) {
	issue, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(ctx, issue, claims, kelasID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "issue is not visible to this role")
	}
	return issue, nil
}

// List returns issues scoped by role: the pembimbing their own, the homeroom
// teacher their class, students the issues raised about them.
func (s *IssueService) List(ctx context.Context, claims *models.JWTClaims, kelasID string, filter models.IssueFilter) ([]models.Issue, int, error) {
	switch {
	case claims.Role == models.RoleSiswa:
		filter.SiswaID = claims.SiswaID
	case claims.Role == models.RoleAdmin:
	case claims.HasHat(models.HatWaliKelas) && kelasID != "":
		filter.KelasID = kelasID
	case claims.HasHat(models.HatPembimbing):
		filter.PembimbingID = claims.GuruID
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "no issue visibility for this role")
	}

	rows, total, err := s.issues.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	return rows, total, nil
}

func (s *IssueService) load(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	return issue, nil
}

func (s *IssueService) visible(ctx context.Context, issue *models.Issue, claims *models.JWTClaims, kelasID string) bool {
	switch {
	case claims.Role == models.RoleAdmin:
		return true
	case claims.Role == models.RoleSiswa:
		return issue.SiswaID == claims.SiswaID
	case issue.PembimbingID == claims.GuruID:
		return true
	case claims.HasHat(models.HatWaliKelas) && kelasID != "":
		siswa, err := s.siswa.GetByID(ctx, issue.SiswaID)
		if err != nil {
			return false
		}
		return siswa.KelasID != nil && *siswa.KelasID == kelasID
	}
	return false
}
