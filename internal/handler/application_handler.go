package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type applicationService interface {
	Submit(ctx context.Context, siswaID string, req dto.SubmitApplicationRequest) (*models.Application, error)
	Decide(ctx context.Context, id, actorGuruID string, req dto.DecideApplicationRequest) (*models.Application, error)
	Complete(ctx context.Context, id string) error
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Application, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.ApplicationQuery) ([]models.ApplicationDetail, int, error)
}

type letterService interface {
	Render(ctx context.Context, applicationID string) ([]byte, string, error)
}

// ApplicationHandler exposes the placement request endpoints.
type ApplicationHandler struct {
	service applicationService
	letters letterService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service applicationService, letters letterService) *ApplicationHandler {
	return &ApplicationHandler{service: service, letters: letters}
}

// Submit godoc
// @Summary Submit a placement application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application payload"))
		return
	}
	app, err := h.service.Submit(c.Request.Context(), claims.SiswaID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// List godoc
// @Summary List placement applications
// @Tags Applications
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param kelas_id query string false "Class filter"
// @Param jurusan_id query string false "Major filter"
// @Param industri_id query string false "Industry filter"
// @Param search query string false "Free text search"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.ApplicationQuery{
		KelasID:    c.Query("kelas_id"),
		JurusanID:  c.Query("jurusan_id"),
		IndustriID: c.Query("industri_id"),
		Search:     strings.TrimSpace(c.Query("search")),
		Page:       pageFromQuery(c),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Statuses = append(query.Statuses, models.NormalizeApplicationStatus(part))
			}
		}
	}
	rows, total, err := h.service.List(c.Request.Context(), claims, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	app, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Decide godoc
// @Summary Approve or reject an application (kaprog)
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.DecideApplicationRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/decision [post]
func (h *ApplicationHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	app, err := h.service.Decide(c.Request.Context(), c.Param("id"), claims.GuruID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app)
}

// Complete godoc
// @Summary Mark an approved placement as completed
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id}/complete [post]
func (h *ApplicationHandler) Complete(c *gin.Context) {
	if err := h.service.Complete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Letter godoc
// @Summary Download the surat pengantar PDF for an approved placement
// @Tags Applications
// @Produce application/pdf
// @Param id path string true "Application ID"
// @Success 200
// @Router /applications/{id}/letter [get]
func (h *ApplicationHandler) Letter(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	// Ownership check rides on the Get path.
	if _, err := h.service.Get(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	pdf, filename, err := h.letters.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
