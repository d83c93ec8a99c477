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

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	HasActive(ctx context.Context, siswaID, groupID string) (bool, error)
	List(ctx context.Context, filter models.ApplicationFilter, pageSize int) ([]models.ApplicationDetail, int, error)
	Decide(ctx context.Context, params repository.DecideApplicationParams) error
	SetStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error
}

type applicationSiswaStore interface {
	GetByID(ctx context.Context, id string) (*models.Siswa, error)
}

type applicationGroupStore interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
}

type applicationIndustriStore interface {
	GetIndustri(ctx context.Context, id string) (*models.Industri, error)
}

// eventPublisher pushes workflow events toward connected student sessions.
// Publishing is fire-and-forget from the workflow's perspective: a decision
// must not fail because the relay is down.
type eventPublisher interface {
	Publish(ctx context.Context, userIDs []string, event models.Event)
}

// workflowRecorder counts decisions for operational dashboards.
type workflowRecorder interface {
	RecordWorkflowDecision(kind, outcome string)
}

// ApplicationService implements the placement request lifecycle.
type ApplicationService struct {
	apps      applicationStore
	siswa     applicationSiswaStore
	groups    applicationGroupStore
	industri  applicationIndustriStore
	publisher eventPublisher
	metrics   workflowRecorder
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewApplicationService constructs the service.
func NewApplicationService(
	apps applicationStore,
	siswa applicationSiswaStore,
	groups applicationGroupStore,
	industri applicationIndustriStore,
	publisher eventPublisher,
	metrics workflowRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	pageSize int,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ApplicationService{
		apps:      apps,
		siswa:     siswa,
		groups:    groups,
		industri:  industri,
		publisher: publisher,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		pageSize:  pageSize,
	}
}

// Submit creates a placement request for an individual student. A student may
// hold at most one active (pending or approved) application at a time.
func (s *ApplicationService) Submit(ctx context.Context, siswaID string, req dto.SubmitApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	industri, err := s.industri.GetIndustri(ctx, req.IndustriID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "industry partner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load industry partner")
	}
	if industri.Status != models.IndustriStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "industry partner is not accepting placements")
	}

	active, err := s.apps.HasActive(ctx, siswaID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active applications")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrDuplicateApplication, "")
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:                uuid.NewString(),
		SiswaID:           &siswaID,
		IndustriID:        req.IndustriID,
		Status:            models.ApplicationStatusPending,
		Catatan:           req.Catatan,
		TanggalPermohonan: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("siswa_id", siswaID),
		zap.String("industri_id", req.IndustriID))
	return app, nil
}

// Decide records the kaprog's approve/reject decision. The persistence layer
// guards the update on PENDING, so a repeated decision or a lost race comes
// back as sql.ErrNoRows and is reported as a conflict, never as a second win.
func (s *ApplicationService) Decide(ctx context.Context, id, actorGuruID string, req dto.DecideApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	status := models.NormalizeApplicationStatus(req.Status)
	if status != models.ApplicationStatusApproved && status != models.ApplicationStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be APPROVED or REJECTED")
	}

	params := repository.DecideApplicationParams{
		ID:          id,
		Status:      status,
		ProcessedBy: actorGuruID,
		DecidedAt:   time.Now().UTC(),
	}
	if req.KaprogNote != "" {
		params.KaprogNote = &req.KaprogNote
	}

	if status == models.ApplicationStatusApproved {
		if req.PembimbingGuruID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "approval requires a supervising teacher")
		}
		mulai, err := parseDate(req.TanggalMulai)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal_mulai")
		}
		selesai, err := parseDate(req.TanggalSelesai)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid tanggal_selesai")
		}
		if !selesai.After(mulai) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tanggal_selesai must be after tanggal_mulai")
		}
		params.PembimbingGuruID = &req.PembimbingGuruID
		params.TanggalMulai = &mulai
		params.TanggalSelesai = &selesai
	} else if req.KaprogNote == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires a note")
	}

	if err := s.apps.Decide(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			app, getErr := s.apps.GetByID(ctx, id)
			if getErr != nil {
				if errors.Is(getErr, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
				}
				return nil, appErrors.Wrap(getErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
			}
			return nil, appErrors.Clone(appErrors.ErrAlreadyDecided,
				"application was already decided as "+string(app.Status))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist decision")
	}

	if s.metrics != nil {
		s.metrics.RecordWorkflowDecision("application", string(status))
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload application")
	}

	s.notifyDecision(ctx, app)
	return app, nil
}

// Complete moves an approved application to COMPLETED at the end of the
// placement period.
func (s *ApplicationService) Complete(ctx context.Context, id string) error {
	if err := s.apps.SetStatus(ctx, id, models.ApplicationStatusApproved, models.ApplicationStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "application is not in an approved state")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete application")
	}
	return nil
}

// Get loads a single application, enforcing that students only see their own.
func (s *ApplicationService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if claims != nil && claims.Role == models.RoleSiswa {
		if !s.ownedBySiswa(ctx, app, claims.SiswaID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
		}
	}
	return app, nil
}

// List returns applications scoped by role: students see their own rows only,
// other roles get the full filter surface.
func (s *ApplicationService) List(ctx context.Context, claims *models.JWTClaims, query dto.ApplicationQuery) ([]models.ApplicationDetail, int, error) {
	filter := models.ApplicationFilter{
		Statuses:   query.Statuses,
		KelasID:    query.KelasID,
		JurusanID:  query.JurusanID,
		IndustriID: query.IndustriID,
		Search:     query.Search,
		Page:       query.Page,
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, 0, appErrors.Clone(appErrors.ErrValidation, "unknown status filter "+string(st))
		}
	}
	if claims != nil && claims.Role == models.RoleSiswa {
		filter.SiswaID = claims.SiswaID
	}

	rows, total, err := s.apps.List(ctx, filter, s.pageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return rows, total, nil
}

func (s *ApplicationService) ownedBySiswa(ctx context.Context, app *models.Application, siswaID string) bool {
	if app.SiswaID != nil && *app.SiswaID == siswaID {
		return true
	}
	if app.GroupID == nil {
		return false
	}
	group, err := s.groups.GetByID(ctx, *app.GroupID)
	if err != nil {
		return false
	}
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

// notifyDecision fans the decision out to every affected student account.
func (s *ApplicationService) notifyDecision(ctx context.Context, app *models.Application) {
	if s.publisher == nil {
		return
	}

	eventType := models.EventPKLApproved
	if app.Status == models.ApplicationStatusRejected {
		eventType = models.EventPKLRejected
	}
	event := models.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"application_id": app.ID,
			"industri_id":    app.IndustriID,
			"status":         string(app.Status),
		},
		Timestamp: time.Now().UTC(),
	}
	if app.KaprogNote != nil {
		event.Data["catatan"] = *app.KaprogNote
	}

	userIDs := s.recipientUsers(ctx, app)
	if len(userIDs) == 0 {
		return
	}
	s.publisher.Publish(ctx, userIDs, event)
}

func (s *ApplicationService) recipientUsers(ctx context.Context, app *models.Application) []string {
	siswaIDs := make([]string, 0, 4)
	if app.SiswaID != nil {
		siswaIDs = append(siswaIDs, *app.SiswaID)
	}
	if app.GroupID != nil {
		group, err := s.groups.GetByID(ctx, *app.GroupID)
		if err != nil {
			s.logger.Warn("failed to load group for notification fan-out",
				zap.String("group_id", *app.GroupID), zap.Error(err))
		} else {
			siswaIDs = append(siswaIDs, group.OwnerSiswaID)
			for _, m := range group.Members {
				if m.Status == models.InvitationAccepted {
					siswaIDs = append(siswaIDs, m.SiswaID)
				}
			}
		}
	}

	seen := make(map[string]struct{}, len(siswaIDs))
	userIDs := make([]string, 0, len(siswaIDs))
	for _, id := range siswaIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		siswa, err := s.siswa.GetByID(ctx, id)
		if err != nil || siswa.UserID == nil {
			continue
		}
		userIDs = append(userIDs, *siswa.UserID)
	}
	return userIDs
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}
