package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type referenceService interface {
	ListSiswa(ctx context.Context, filter models.SiswaFilter) ([]models.SiswaDetail, int, error)
	UpsertSiswa(ctx context.Context, id string, req dto.UpsertSiswaRequest) (*models.Siswa, error)
	DeactivateSiswa(ctx context.Context, id string) error
	ListGuru(ctx context.Context, filter models.GuruFilter) ([]models.Guru, int, error)
	UpsertGuru(ctx context.Context, id string, req dto.UpsertGuruRequest) (*models.Guru, error)
	DeactivateGuru(ctx context.Context, id string) error
	ListKelas(ctx context.Context, filter models.ReferenceFilter) ([]models.Kelas, int, error)
	UpsertKelas(ctx context.Context, id string, req dto.UpsertKelasRequest) (*models.Kelas, error)
	DeleteKelas(ctx context.Context, id string) error
	ListJurusan(ctx context.Context, filter models.ReferenceFilter) ([]models.Jurusan, int, error)
	UpsertJurusan(ctx context.Context, id string, req dto.UpsertJurusanRequest) (*models.Jurusan, error)
	DeleteJurusan(ctx context.Context, id string) error
	ListIndustri(ctx context.Context, claims *models.JWTClaims, filter models.ReferenceFilter) ([]models.Industri, int, error)
	UpsertIndustri(ctx context.Context, id string, req dto.UpsertIndustriRequest) (*models.Industri, error)
	DeleteIndustri(ctx context.Context, id string) error
	ListTahunAjaran(ctx context.Context, filter models.ReferenceFilter) ([]models.TahunAjaran, int, error)
	UpsertTahunAjaran(ctx context.Context, id string, req dto.UpsertTahunAjaranRequest) (*models.TahunAjaran, error)
	DeleteTahunAjaran(ctx context.Context, id string) error
	ListKegiatan(ctx context.Context, industriID string, activeOnly bool) ([]models.Kegiatan, error)
	CreateKegiatan(ctx context.Context, req dto.UpsertKegiatanRequest) (*models.Kegiatan, error)
}

// ReferenceHandler exposes master-data CRUD for administrators plus the
// read endpoints other roles need (industri partners, kegiatan catalogs).
type ReferenceHandler struct {
	service referenceService
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(service referenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

func referenceFilterFromQuery(c *gin.Context) models.ReferenceFilter {
	return models.ReferenceFilter{
		Search: c.Query("search"),
		Page:   pageFromQuery(c),
	}
}

func boolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ListSiswa godoc
// @Summary List students
// @Tags Master Data
// @Produce json
// @Param kelas_id query string false "Class filter"
// @Param jurusan_id query string false "Major filter"
// @Param search query string false "Name or NISN search"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /admin/siswa [get]
func (h *ReferenceHandler) ListSiswa(c *gin.Context) {
	filter := models.SiswaFilter{
		KelasID:   c.Query("kelas_id"),
		JurusanID: c.Query("jurusan_id"),
		Search:    c.Query("search"),
		Active:    boolQuery(c, "active"),
		Page:      pageFromQuery(c),
	}
	rows, total, err := h.service.ListSiswa(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertSiswa godoc
// @Summary Create or update a student record
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertSiswaRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /admin/siswa [post]
func (h *ReferenceHandler) UpsertSiswa(c *gin.Context) {
	var req dto.UpsertSiswaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student payload"))
		return
	}
	siswa, err := h.service.UpsertSiswa(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, siswa)
}

// DeactivateSiswa godoc
// @Summary Deactivate a student record
// @Tags Master Data
// @Param id path string true "Student ID"
// @Success 204
// @Router /admin/siswa/{id} [delete]
func (h *ReferenceHandler) DeactivateSiswa(c *gin.Context) {
	if err := h.service.DeactivateSiswa(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGuru godoc
// @Summary List teachers
// @Tags Master Data
// @Produce json
// @Param jurusan_id query string false "Major filter"
// @Param is_pembimbing query bool false "Supervisor filter"
// @Param search query string false "Name or NIP search"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /admin/guru [get]
func (h *ReferenceHandler) ListGuru(c *gin.Context) {
	filter := models.GuruFilter{
		JurusanID:    c.Query("jurusan_id"),
		IsPembimbing: boolQuery(c, "is_pembimbing"),
		Search:       c.Query("search"),
		Active:       boolQuery(c, "active"),
		Page:         pageFromQuery(c),
	}
	rows, total, err := h.service.ListGuru(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertGuru godoc
// @Summary Create or update a teacher record
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertGuruRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /admin/guru [post]
func (h *ReferenceHandler) UpsertGuru(c *gin.Context) {
	var req dto.UpsertGuruRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher payload"))
		return
	}
	guru, err := h.service.UpsertGuru(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guru)
}

// DeactivateGuru godoc
// @Summary Deactivate a teacher record
// @Tags Master Data
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /admin/guru/{id} [delete]
func (h *ReferenceHandler) DeactivateGuru(c *gin.Context) {
	if err := h.service.DeactivateGuru(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListKelas godoc
// @Summary List classes
// @Tags Master Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /kelas [get]
func (h *ReferenceHandler) ListKelas(c *gin.Context) {
	rows, total, err := h.service.ListKelas(c.Request.Context(), referenceFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertKelas godoc
// @Summary Create or update a class
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertKelasRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /admin/kelas [post]
func (h *ReferenceHandler) UpsertKelas(c *gin.Context) {
	var req dto.UpsertKelasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid class payload"))
		return
	}
	kelas, err := h.service.UpsertKelas(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kelas)
}

// DeleteKelas godoc
// @Summary Delete a class
// @Tags Master Data
// @Param id path string true "Class ID"
// @Success 204
// @Router /admin/kelas/{id} [delete]
func (h *ReferenceHandler) DeleteKelas(c *gin.Context) {
	if err := h.service.DeleteKelas(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListJurusan godoc
// @Summary List majors
// @Tags Master Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /jurusan [get]
func (h *ReferenceHandler) ListJurusan(c *gin.Context) {
	rows, total, err := h.service.ListJurusan(c.Request.Context(), referenceFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertJurusan godoc
// @Summary Create or update a major
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertJurusanRequest true "Major payload"
// @Success 200 {object} response.Envelope
// @Router /admin/jurusan [post]
func (h *ReferenceHandler) UpsertJurusan(c *gin.Context) {
	var req dto.UpsertJurusanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid major payload"))
		return
	}
	jurusan, err := h.service.UpsertJurusan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jurusan)
}

// DeleteJurusan godoc
// @Summary Delete a major
// @Tags Master Data
// @Param id path string true "Major ID"
// @Success 204
// @Router /admin/jurusan/{id} [delete]
func (h *ReferenceHandler) DeleteJurusan(c *gin.Context) {
	if err := h.service.DeleteJurusan(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListIndustri godoc
// @Summary List industry partners
// @Tags Master Data
// @Produce json
// @Param search query string false "Name search"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /industri [get]
func (h *ReferenceHandler) ListIndustri(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, total, err := h.service.ListIndustri(c.Request.Context(), claims, referenceFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertIndustri godoc
// @Summary Create or update an industry partner
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertIndustriRequest true "Industry payload"
// @Success 200 {object} response.Envelope
// @Router /admin/industri [post]
func (h *ReferenceHandler) UpsertIndustri(c *gin.Context) {
	var req dto.UpsertIndustriRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid industry payload"))
		return
	}
	industri, err := h.service.UpsertIndustri(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, industri)
}

// DeleteIndustri godoc
// @Summary Delete an industry partner
// @Tags Master Data
// @Param id path string true "Industry ID"
// @Success 204
// @Router /admin/industri/{id} [delete]
func (h *ReferenceHandler) DeleteIndustri(c *gin.Context) {
	if err := h.service.DeleteIndustri(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTahunAjaran godoc
// @Summary List academic years
// @Tags Master Data
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tahun-ajaran [get]
func (h *ReferenceHandler) ListTahunAjaran(c *gin.Context) {
	rows, total, err := h.service.ListTahunAjaran(c.Request.Context(), referenceFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// UpsertTahunAjaran godoc
// @Summary Create or update an academic year
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertTahunAjaranRequest true "Academic year payload"
// @Success 200 {object} response.Envelope
// @Router /admin/tahun-ajaran [post]
func (h *ReferenceHandler) UpsertTahunAjaran(c *gin.Context) {
	var req dto.UpsertTahunAjaranRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid academic year payload"))
		return
	}
	tahun, err := h.service.UpsertTahunAjaran(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tahun)
}

// DeleteTahunAjaran godoc
// @Summary Delete an academic year
// @Tags Master Data
// @Param id path string true "Academic year ID"
// @Success 204
// @Router /admin/tahun-ajaran/{id} [delete]
func (h *ReferenceHandler) DeleteTahunAjaran(c *gin.Context) {
	if err := h.service.DeleteTahunAjaran(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListKegiatan godoc
// @Summary List activity catalog entries for an industry
// @Tags Master Data
// @Produce json
// @Param industri_id query string true "Industry ID"
// @Param active_only query bool false "Hide inactive activities"
// @Success 200 {object} response.Envelope
// @Router /kegiatan [get]
func (h *ReferenceHandler) ListKegiatan(c *gin.Context) {
	activeOnly := true
	if v := boolQuery(c, "active_only"); v != nil {
		activeOnly = *v
	}
	rows, err := h.service.ListKegiatan(c.Request.Context(), c.Query("industri_id"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// CreateKegiatan godoc
// @Summary Add an activity to an industry's catalog
// @Tags Master Data
// @Accept json
// @Produce json
// @Param payload body dto.UpsertKegiatanRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /admin/kegiatan [post]
func (h *ReferenceHandler) CreateKegiatan(c *gin.Context) {
	var req dto.UpsertKegiatanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activity payload"))
		return
	}
	kegiatan, err := h.service.CreateKegiatan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, kegiatan)
}
