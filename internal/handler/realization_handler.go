package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type realizationService interface {
	UploadPhotos(ctx context.Context, photos [][]byte) (*dto.UploadResult, error)
	Create(ctx context.Context, pembimbingID string, req dto.CreateRealizationRequest) (*models.Realization, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Realization, error)
	UpdatePhotos(ctx context.Context, id, pembimbingID string, photos [][]byte) (*models.Realization, error)
	List(ctx context.Context, claims *models.JWTClaims, filter models.RealizationFilter) ([]models.Realization, int, error)
}

// RealizationHandler exposes the realisasi kegiatan endpoints. Submission is
// two-phase: photos first, then the record referencing the returned URLs.
type RealizationHandler struct {
	service      realizationService
	maxFileBytes int64
}

// NewRealizationHandler constructs the handler.
func NewRealizationHandler(service realizationService, maxFileBytes int64) *RealizationHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = 5 << 20
	}
	return &RealizationHandler{service: service, maxFileBytes: maxFileBytes}
}

// UploadPhotos godoc
// @Summary Upload evidence photos for a realization record
// @Tags Realizations
// @Accept multipart/form-data
// @Produce json
// @Param photos formData file true "Evidence photos"
// @Success 200 {object} response.Envelope
// @Router /realizations/photos [post]
func (h *RealizationHandler) UploadPhotos(c *gin.Context) {
	photos, err := h.photos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.UploadPhotos(c.Request.Context(), photos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Upload(c, result, true)
}

// Create godoc
// @Summary Record a realized activity
// @Tags Realizations
// @Accept json
// @Produce json
// @Param payload body dto.CreateRealizationRequest true "Realization payload"
// @Success 201 {object} response.Envelope
// @Router /realizations [post]
func (h *RealizationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRealizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid realization payload"))
		return
	}
	realization, err := h.service.Create(c.Request.Context(), claims.GuruID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, realization)
}

// Get godoc
// @Summary Get realization detail
// @Tags Realizations
// @Produce json
// @Param id path string true "Realization ID"
// @Success 200 {object} response.Envelope
// @Router /realizations/{id} [get]
func (h *RealizationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	realization, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, realization)
}

// UpdatePhotos godoc
// @Summary Replace the photo set of a realization record
// @Tags Realizations
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Realization ID"
// @Param photos formData file true "Replacement photos"
// @Success 200 {object} response.Envelope
// @Router /realizations/{id}/photos [put]
func (h *RealizationHandler) UpdatePhotos(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	photos, err := h.photos(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	realization, err := h.service.UpdatePhotos(c.Request.Context(), c.Param("id"), claims.GuruID, photos)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, realization)
}

// List godoc
// @Summary List realization records
// @Tags Realizations
// @Produce json
// @Param kegiatan_id query string false "Activity filter"
// @Param industri_id query string false "Industry filter"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /realizations [get]
func (h *RealizationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.RealizationFilter{
		KegiatanID: c.Query("kegiatan_id"),
		IndustriID: c.Query("industri_id"),
		Page:       pageFromQuery(c),
	}
	rows, total, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

func (h *RealizationHandler) photos(c *gin.Context) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expected multipart form data")
	}
	return readMultipartPhotos(form, "photos", h.maxFileBytes)
}
