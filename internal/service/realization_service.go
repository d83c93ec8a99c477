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

type realizationStore interface {
	Create(ctx context.Context, rec *models.Realization) error
	GetByID(ctx context.Context, id string) (*models.Realization, error)
	List(ctx context.Context, filter models.RealizationFilter, pageSize int) ([]models.Realization, int, error)
	UpdatePhotos(ctx context.Context, id string, urls []string) error
	GetKegiatan(ctx context.Context, id string) (*models.Kegiatan, error)
}

// RealizationService implements supervision evidence logging in two phases:
// photos are uploaded as an all-or-nothing batch first, then the record is
// created referencing the stored URLs. A record never exists without photos.
type RealizationService struct {
	records   realizationStore
	uploader  *PhotoUploader
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewRealizationService constructs the service.
func NewRealizationService(records realizationStore, uploader *PhotoUploader, validate *validator.Validate, logger *zap.Logger, pageSize int) *RealizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &RealizationService{records: records, uploader: uploader, validator: validate, logger: logger, pageSize: pageSize}
}

// UploadPhotos is phase one: store the evidence batch and return the URLs the
// creation call must reference. Any failure stores nothing.
func (s *RealizationService) UploadPhotos(ctx context.Context, photos [][]byte) (*dto.UploadResult, error) {
	urls, err := s.uploader.UploadBatch("realisasi", photos)
	if err != nil {
		return nil, err
	}
	return &dto.UploadResult{URLs: urls}, nil
}

// Create is phase two: persist the log entry. The non-empty URL requirement is
// the gate that keeps a failed upload from producing a photo-less record.
func (s *RealizationService) Create(ctx context.Context, pembimbingID string, req dto.CreateRealizationRequest) (*models.Realization, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid realization payload")
	}

	kegiatan, err := s.records.GetKegiatan(ctx, req.KegiatanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "kegiatan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load kegiatan")
	}
	if !kegiatan.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "kegiatan is no longer active")
	}

	tanggal := time.Now().UTC()
	if req.TanggalRealisasi != "" {
		parsed, err := parseDate(req.TanggalRealisasi)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal_realisasi")
		}
		tanggal = parsed
	}

	now := time.Now().UTC()
	rec := &models.Realization{
		ID:               uuid.NewString(),
		KegiatanID:       req.KegiatanID,
		IndustriID:       req.IndustriID,
		PembimbingID:     pembimbingID,
		BuktiFotoURLs:    req.BuktiFotoURLs,
		Catatan:          req.Catatan,
		Status:           models.RealizationStatusSubmitted,
		TanggalRealisasi: tanggal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create realization")
	}

	s.logger.Info("realization recorded",
		zap.String("realization_id", rec.ID),
		zap.String("kegiatan_id", req.KegiatanID),
		zap.Int("photos", len(req.BuktiFotoURLs)))
	return rec, nil
}

// Get loads one record; a pembimbing sees only their own entries.
func (s *RealizationService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Realization, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "realization not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load realization")
	}
	if claims.Role == models.RoleGuru && !claims.HasHat(models.HatKoordinator) && rec.PembimbingID != claims.GuruID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "realization belongs to another teacher")
	}
	return rec, nil
}

// UpdatePhotos replaces the photo set of an existing record with a freshly
// uploaded batch. The record keeps its old set until the new one stored fully.
func (s *RealizationService) UpdatePhotos(ctx context.Context, id, pembimbingID string, photos [][]byte) (*models.Realization, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "realization not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load realization")
	}
	if rec.PembimbingID != pembimbingID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "realization belongs to another teacher")
	}

	urls, err := s.uploader.UploadBatch("realisasi", photos)
	if err != nil {
		return nil, err
	}
	if err := s.records.UpdatePhotos(ctx, id, urls); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update photos")
	}
	rec.BuktiFotoURLs = urls
	return rec, nil
}

// List returns records scoped by role: a pembimbing their own, the
// koordinator and admin everything, optionally narrowed by kegiatan/industri.
func (s *RealizationService) List(ctx context.Context, claims *models.JWTClaims, filter models.RealizationFilter) ([]models.Realization, int, error) {
	if claims.Role == models.RoleGuru && !claims.HasHat(models.HatKoordinator) {
		filter.PembimbingID = claims.GuruID
	}
	rows, total, err := s.records.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list realizations")
	}
	return rows, total, nil
}
