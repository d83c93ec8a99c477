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

type issueService interface {
	Create(ctx context.Context, pembimbingID string, req dto.CreateIssueRequest) (*models.Issue, error)
	Update(ctx context.Context, id, pembimbingID string, req dto.UpdateIssueRequest) (*models.Issue, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims, kelasID string) (*models.Issue, error)
	List(ctx context.Context, claims *models.JWTClaims, kelasID string, filter models.IssueFilter) ([]models.Issue, int, error)
}

type issueGuruStore interface {
	GetByID(ctx context.Context, id string) (*models.Guru, error)
}

// IssueHandler exposes the permasalahan endpoints.
type IssueHandler struct {
	service issueService
	guru    issueGuruStore
}

// NewIssueHandler constructs the handler.
func NewIssueHandler(service issueService, guru issueGuruStore) *IssueHandler {
	return &IssueHandler{service: service, guru: guru}
}

// Create godoc
// @Summary Raise an issue about a student
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body dto.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid issue payload"))
		return
	}
	issue, err := h.service.Create(c.Request.Context(), claims.GuruID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// Update godoc
// @Summary Progress an issue's follow-up state
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param payload body dto.UpdateIssueRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /issues/{id} [put]
func (h *IssueHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid update payload"))
		return
	}
	issue, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.GuruID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue)
}

// Get godoc
// @Summary Get issue detail
// @Tags Issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	issue, err := h.service.Get(c.Request.Context(), c.Param("id"), claims, h.homeroomKelas(c, claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue)
}

// List godoc
// @Summary List issues for the caller's role
// @Tags Issues
// @Produce json
// @Param kategori query string false "Category filter"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.IssueFilter{Page: pageFromQuery(c)}
	if raw := c.Query("kategori"); raw != "" {
		kategori, ok := models.ValidIssueKategori(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown kategori"))
			return
		}
		filter.Kategori = kategori
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				filter.Statuses = append(filter.Statuses, models.IssueStatus(part))
			}
		}
	}
	rows, total, err := h.service.List(c.Request.Context(), claims, h.homeroomKelas(c, claims), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// homeroomKelas resolves the wali kelas's class for scoping reads.
func (h *IssueHandler) homeroomKelas(c *gin.Context, claims *models.JWTClaims) string {
	if claims.Role != models.RoleGuru || !claims.HasHat(models.HatWaliKelas) {
		return ""
	}
	guru, err := h.guru.GetByID(c.Request.Context(), claims.GuruID)
	if err != nil || guru.KelasID == nil {
		return ""
	}
	return *guru.KelasID
}
