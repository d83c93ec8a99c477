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

type leaveStore interface {
	Create(ctx context.Context, leave *models.Leave) error
	GetByID(ctx context.Context, id string) (*models.Leave, error)
	List(ctx context.Context, filter models.LeaveFilter, pageSize int) ([]models.Leave, int, error)
	Decide(ctx context.Context, id string, status models.LeaveStatus, reason *string, decidedAt time.Time) error
	UpdatePending(ctx context.Context, leave *models.Leave) error
	DeletePending(ctx context.Context, id string) error
}

type leaveApplicationStore interface {
	FindApprovedBySiswa(ctx context.Context, siswaID string) (*models.Application, error)
}

// LeaveService implements the izin lifecycle: request with photo evidence,
// single pembimbing decision, owner edits while pending.
type LeaveService struct {
	leaves    leaveStore
	apps      leaveApplicationStore
	uploader  *PhotoUploader
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewLeaveService constructs the service.
func NewLeaveService(leaves leaveStore, apps leaveApplicationStore, uploader *PhotoUploader, validate *validator.Validate, logger *zap.Logger, pageSize int) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &LeaveService{leaves: leaves, apps: apps, uploader: uploader, validator: validate, logger: logger, pageSize: pageSize}
}

// Create files a leave request. The request lands with the pembimbing assigned
// on the student's approved placement; students without an active placement
// have no supervisor to address and are rejected.
func (s *LeaveService) Create(ctx context.Context, siswaID string, req dto.CreateLeaveRequest, photos [][]byte) (*models.Leave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leave payload")
	}
	jenis, ok := models.ValidLeaveJenis(req.Jenis)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown jenis")
	}
	tanggal, err := parseDate(req.Tanggal)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal")
	}

	app, err := s.apps.FindApprovedBySiswa(ctx, siswaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "no active placement to request leave from")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	if app.PembimbingGuruID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "placement has no supervising teacher assigned")
	}

	urls, err := s.uploader.UploadBatch("izin", photos)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	leave := &models.Leave{
		ID:            uuid.NewString(),
		SiswaID:       siswaID,
		Jenis:         jenis,
		Tanggal:       tanggal,
		Keterangan:    req.Keterangan,
		BuktiFotoURLs: urls,
		Status:        models.LeaveStatusPending,
		PembimbingID:  *app.PembimbingGuruID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave request")
	}
	return leave, nil
}

// Update edits a pending request; only the owner may call it and only while
// the pembimbing has not decided.
func (s *LeaveService) Update(ctx context.Context, id, siswaID string, req dto.UpdateLeaveRequest, photos [][]byte) (*models.Leave, error) {
	leave, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.SiswaID != siswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "leave request belongs to another student")
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, "leave request has already been decided")
	}

	if req.Jenis != "" {
		jenis, ok := models.ValidLeaveJenis(req.Jenis)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown jenis")
		}
		leave.Jenis = jenis
	}
	if req.Tanggal != "" {
		tanggal, err := parseDate(req.Tanggal)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal")
		}
		leave.Tanggal = tanggal
	}
	if req.Keterangan != "" {
		leave.Keterangan = req.Keterangan
	}
	if len(photos) > 0 {
		urls, err := s.uploader.UploadBatch("izin", photos)
		if err != nil {
			return nil, err
		}
		leave.BuktiFotoURLs = urls
	}

	if err := s.leaves.UpdatePending(ctx, leave); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, "leave request has already been decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
	}
	return leave, nil
}

// Delete removes a pending request; decided requests stay on record.
func (s *LeaveService) Delete(ctx context.Context, id, siswaID string) error {
	leave, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if leave.SiswaID != siswaID {
		return appErrors.Clone(appErrors.ErrForbidden, "leave request belongs to another student")
	}
	if err := s.leaves.DeletePending(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrAlreadyDecided, "leave request has already been decided")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete leave request")
	}
	return nil
}

// Decide records the pembimbing's one-shot decision. The guarded update makes
// a second decision a conflict.
func (s *LeaveService) Decide(ctx context.Context, id, guruID string, req dto.DecideLeaveRequest) (*models.Leave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	var status models.LeaveStatus
	switch models.LeaveStatus(req.Status) {
	case models.LeaveStatusApproved:
		status = models.LeaveStatusApproved
	case models.LeaveStatusRejected:
		if req.RejectionReason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires a reason")
		}
		status = models.LeaveStatusRejected
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}

	leave, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.PembimbingID != guruID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "leave request is addressed to another teacher")
	}

	var reason *string
	if req.RejectionReason != "" {
		reason = &req.RejectionReason
	}
	if err := s.leaves.Decide(ctx, id, status, reason, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, "leave request has already been decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist decision")
	}
	return s.load(ctx, id)
}

// List returns leave requests scoped by role: students their own, pembimbing
// the requests addressed to them.
func (s *LeaveService) List(ctx context.Context, claims *models.JWTClaims, statuses []models.LeaveStatus, page int) ([]models.Leave, int, error) {
	filter := models.LeaveFilter{Statuses: statuses, Page: page}
	switch {
	case claims.Role == models.RoleSiswa:
		filter.SiswaID = claims.SiswaID
	case claims.Role == models.RoleAdmin:
	case claims.HasHat(models.HatPembimbing):
		filter.PembimbingID = claims.GuruID
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "no leave visibility for this role")
	}

	rows, total, err := s.leaves.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	return rows, total, nil
}

func (s *LeaveService) load(ctx context.Context, id string) (*models.Leave, error) {
	leave, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	return leave, nil
}
