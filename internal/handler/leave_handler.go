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

type leaveService interface {
	Create(ctx context.Context, siswaID string, req dto.CreateLeaveRequest, photos [][]byte) (*models.Leave, error)
	Update(ctx context.Context, id, siswaID string, req dto.UpdateLeaveRequest, photos [][]byte) (*models.Leave, error)
	Delete(ctx context.Context, id, siswaID string) error
	Decide(ctx context.Context, id, guruID string, req dto.DecideLeaveRequest) (*models.Leave, error)
	List(ctx context.Context, claims *models.JWTClaims, statuses []models.LeaveStatus, page int) ([]models.Leave, int, error)
}

// LeaveHandler exposes the izin endpoints.
type LeaveHandler struct {
	service      leaveService
	maxFileBytes int64
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(service leaveService, maxFileBytes int64) *LeaveHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = 5 << 20
	}
	return &LeaveHandler{service: service, maxFileBytes: maxFileBytes}
}

// Create godoc
// @Summary File a leave request with photo evidence
// @Tags Leaves
// @Accept multipart/form-data
// @Produce json
// @Param jenis formData string true "Sakit / Izin / Keperluan Keluarga"
// @Param tanggal formData string true "Date (YYYY-MM-DD)"
// @Param keterangan formData string true "Explanation"
// @Param photos formData file true "Evidence photos"
// @Success 201 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateLeaveRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid leave payload"))
		return
	}
	photos, err := h.photos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	leave, err := h.service.Create(c.Request.Context(), claims.SiswaID, req, photos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// Update godoc
// @Summary Edit a pending leave request
// @Tags Leaves
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Leave ID"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id} [put]
func (h *LeaveHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateLeaveRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid leave payload"))
		return
	}
	photos, err := h.photos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	leave, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.SiswaID, req, photos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// Delete godoc
// @Summary Delete a pending leave request
// @Tags Leaves
// @Param id path string true "Leave ID"
// @Success 204
// @Router /leaves/{id} [delete]
func (h *LeaveHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.SiswaID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Decide godoc
// @Summary Approve or reject a leave request (pembimbing)
// @Tags Leaves
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body dto.DecideLeaveRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/decision [post]
func (h *LeaveHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	leave, err := h.service.Decide(c.Request.Context(), c.Param("id"), claims.GuruID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// List godoc
// @Summary List leave requests for the caller's role
// @Tags Leaves
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var statuses []models.LeaveStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				statuses = append(statuses, models.LeaveStatus(part))
			}
		}
	}
	rows, total, err := h.service.List(c.Request.Context(), claims, statuses, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

func (h *LeaveHandler) photos(c *gin.Context) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid multipart form")
	}
	return readMultipartPhotos(form, "photos", h.maxFileBytes)
}
