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
	"github.com/maganghub/maganghub-api/internal/repository"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

type transferStore interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	GetByID(ctx context.Context, id string) (*models.Transfer, error)
	HasOpen(ctx context.Context, siswaID string) (bool, error)
	List(ctx context.Context, filter models.TransferFilter, pageSize int) ([]models.Transfer, int, error)
	Advance(ctx context.Context, params repository.AdvanceParams) error
}

type transferApplicationStore interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
	Reassign(ctx context.Context, id, industriID string, effective time.Time) error
}

type transferDocumentStore interface {
	Save(prefix, ext string, data []byte) (string, error)
}

// TransferService implements the pindah PKL approval chain:
// pembimbing -> kaprog -> koordinator, strictly in order, rejection terminal.
type TransferService struct {
	transfers transferStore
	apps      transferApplicationStore
	siswa     applicationSiswaStore
	industri  applicationIndustriStore
	documents transferDocumentStore
	publisher eventPublisher
	metrics   workflowRecorder
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewTransferService constructs the service.
func NewTransferService(
	transfers transferStore,
	apps transferApplicationStore,
	siswa applicationSiswaStore,
	industri applicationIndustriStore,
	documents transferDocumentStore,
	publisher eventPublisher,
	metrics workflowRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	pageSize int,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &TransferService{
		transfers: transfers,
		apps:      apps,
		siswa:     siswa,
		industri:  industri,
		documents: documents,
		publisher: publisher,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		pageSize:  pageSize,
	}
}

// Create opens a transfer request against the student's own approved
// application. The supporting document is stored first so the request always
// references a live file.
func (s *TransferService) Create(ctx context.Context, siswaID string, req dto.CreateTransferRequest, document []byte, documentExt string) (*models.Transfer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	app, err := s.apps.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.SiswaID == nil || *app.SiswaID != siswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
	}
	if app.Status != models.ApplicationStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only approved placements can be transferred")
	}
	if app.IndustriID == req.TargetIndustriID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target industry matches the current placement")
	}

	target, err := s.industri.GetIndustri(ctx, req.TargetIndustriID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target industry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target industry")
	}
	if target.Status != models.IndustriStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target industry is not accepting placements")
	}

	open, err := s.transfers.HasOpen(ctx, siswaID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check open transfers")
	}
	if open {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a transfer request is already in progress")
	}

	var documentURL *string
	if len(document) > 0 {
		stored, err := s.documents.Save("pindah", documentExt, document)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to store supporting document")
		}
		documentURL = &stored
	}

	now := time.Now().UTC()
	transfer := &models.Transfer{
		ID:             uuid.NewString(),
		ApplicationID:  app.ID,
		SiswaID:        siswaID,
		TargetIndustri: req.TargetIndustriID,
		Status:         models.TransferPendingPembimbing,
		Catatan:        req.Catatan,
		DocumentURL:    documentURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transfer request")
	}

	s.logger.Info("transfer requested",
		zap.String("transfer_id", transfer.ID),
		zap.String("siswa_id", siswaID),
		zap.String("target_industri_id", req.TargetIndustriID))
	return transfer, nil
}

// Decide records one link's decision. The chain enforces its order twice: a
// role whose hat does not own the current link is rejected up front, and the
// guarded update catches the race where the link moved between read and write.
func (s *TransferService) Decide(ctx context.Context, id string, claims *models.JWTClaims, req dto.DecideTransferRequest) (*models.Transfer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	approve := false
	switch models.NormalizeTransferStatus(req.Status) {
	case models.TransferApproved, "approve":
		approve = true
	case models.TransferRejected, "reject":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}

	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transfer request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transfer")
	}
	if transfer.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyDecided, "transfer chain has already finished")
	}

	hat, ok := transfer.Status.HatForLink()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "transfer is in an unknown state")
	}
	if !claims.HasHat(hat) {
		return nil, appErrors.Clone(appErrors.ErrWrongTurn, "")
	}
	if hat == models.HatPembimbing {
		// The pembimbing link is personal: only the supervisor assigned to
		// the underlying placement may decide it.
		app, err := s.apps.GetByID(ctx, transfer.ApplicationID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
		}
		if app.PembimbingGuruID == nil || *app.PembimbingGuruID != claims.GuruID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "transfer is supervised by another teacher")
		}
	}

	next := models.TransferRejected
	if approve {
		var hasNext bool
		next, hasNext = transfer.Status.Next()
		if !hasNext {
			return nil, appErrors.Clone(appErrors.ErrConflict, "transfer is in an unknown state")
		}
	} else if req.Catatan == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires a note")
	}

	params := repository.AdvanceParams{
		ID:       id,
		Expected: transfer.Status,
		Next:     next,
		Decision: models.TransferDecision{
			Hat:       hat,
			ActorID:   claims.GuruID,
			Status:    next,
			Catatan:   req.Catatan,
			DecidedAt: time.Now().UTC(),
		},
	}
	if next == models.TransferApproved {
		if req.TanggalEfektif == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "final approval requires tanggal_efektif")
		}
		effective, err := parseDate(req.TanggalEfektif)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal_efektif")
		}
		params.TanggalEfektif = &effective
	}

	if err := s.transfers.Advance(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrWrongTurn, "transfer state changed before the decision landed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist decision")
	}

	if s.metrics != nil {
		s.metrics.RecordWorkflowDecision("transfer", string(next))
	}

	if next == models.TransferApproved && params.TanggalEfektif != nil {
		if err := s.apps.Reassign(ctx, transfer.ApplicationID, transfer.TargetIndustri, *params.TanggalEfektif); err != nil {
			// The chain is complete either way; the placement row is fixed up
			// manually if the application left APPROVED meanwhile.
			s.logger.Error("failed to reassign application after transfer approval",
				zap.String("transfer_id", id),
				zap.String("application_id", transfer.ApplicationID),
				zap.Error(err))
		}
	}

	updated, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload transfer")
	}

	s.notifyProgress(ctx, updated)
	return updated, nil
}

// Get loads one transfer; students only see their own.
func (s *TransferService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transfer request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transfer")
	}
	if claims != nil && claims.Role == models.RoleSiswa && transfer.SiswaID != claims.SiswaID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "transfer belongs to another student")
	}
	return transfer, nil
}

// List returns transfers scoped by the caller's position in the chain:
// students see their own, the pembimbing sees requests at their link for
// their supervisees, the kaprog sees their major's requests at the kaprog
// link, the koordinator sees the final link.
func (s *TransferService) List(ctx context.Context, claims *models.JWTClaims, query dto.TransferQuery, jurusanID string) ([]models.Transfer, int, error) {
	filter := models.TransferFilter{Statuses: query.Statuses, Page: query.Page}

	switch {
	case claims.Role == models.RoleSiswa:
		filter.SiswaID = claims.SiswaID
	case claims.Role == models.RoleAdmin:
		// unrestricted
	case claims.HasHat(models.HatKoordinator):
		if len(filter.Statuses) == 0 {
			filter.Statuses = []models.TransferStatus{models.TransferPendingKoordinator}
		}
	case claims.HasHat(models.HatKaprog):
		filter.JurusanID = jurusanID
		if len(filter.Statuses) == 0 {
			filter.Statuses = []models.TransferStatus{models.TransferPendingKaprog}
		}
	case claims.HasHat(models.HatPembimbing):
		filter.PembimbingID = claims.GuruID
		if len(filter.Statuses) == 0 {
			filter.Statuses = []models.TransferStatus{models.TransferPendingPembimbing}
		}
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "no transfer visibility for this role")
	}

	rows, total, err := s.transfers.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transfers")
	}
	return rows, total, nil
}

func (s *TransferService) notifyProgress(ctx context.Context, transfer *models.Transfer) {
	if s.publisher == nil {
		return
	}
	siswa, err := s.siswa.GetByID(ctx, transfer.SiswaID)
	if err != nil || siswa.UserID == nil {
		return
	}
	s.publisher.Publish(ctx, []string{*siswa.UserID}, models.Event{
		Type: models.EventPindahMoved,
		Data: map[string]interface{}{
			"transfer_id":    transfer.ID,
			"application_id": transfer.ApplicationID,
			"status":         string(transfer.Status),
		},
		Timestamp: time.Now().UTC(),
	})
}
