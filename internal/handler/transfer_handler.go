package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type transferService interface {
	Create(ctx context.Context, siswaID string, req dto.CreateTransferRequest, document []byte, documentExt string) (*models.Transfer, error)
	Decide(ctx context.Context, id string, claims *models.JWTClaims, req dto.DecideTransferRequest) (*models.Transfer, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Transfer, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.TransferQuery, jurusanID string) ([]models.Transfer, int, error)
}

type transferGuruStore interface {
	GetByID(ctx context.Context, id string) (*models.Guru, error)
}

type documentSigner interface {
	Generate(recordID, relPath string) (string, time.Time, error)
}

// TransferHandler exposes the pindah PKL endpoints.
type TransferHandler struct {
	service      transferService
	guru         transferGuruStore
	signer       documentSigner
	maxFileBytes int64
}

// NewTransferHandler constructs the handler.
func NewTransferHandler(service transferService, guru transferGuruStore, signer documentSigner, maxFileBytes int64) *TransferHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = 5 << 20
	}
	return &TransferHandler{service: service, guru: guru, signer: signer, maxFileBytes: maxFileBytes}
}

// Create godoc
// @Summary Open a transfer request with a supporting document
// @Tags Transfers
// @Accept multipart/form-data
// @Produce json
// @Param application_id formData string true "Application ID"
// @Param target_industri_id formData string true "Target industry ID"
// @Param catatan formData string true "Reason"
// @Param document formData file false "Supporting document"
// @Success 201 {object} response.Envelope
// @Router /transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.SiswaID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateTransferRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid transfer payload"))
		return
	}

	var document []byte
	var ext string
	if header, err := c.FormFile("document"); err == nil {
		if header.Size > h.maxFileBytes {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document exceeds the size limit"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "failed to read document"))
			return
		}
		document, err = io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "failed to read document"))
			return
		}
		ext = filepath.Ext(header.Filename)
	}

	transfer, err := h.service.Create(c.Request.Context(), claims.SiswaID, req, document, ext)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer)
}

// List godoc
// @Summary List transfer requests for the caller's position in the chain
// @Tags Transfers
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page number"
// @Success 200 {object} response.Envelope
// @Router /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.TransferQuery{Page: pageFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Statuses = append(query.Statuses, models.NormalizeTransferStatus(part))
			}
		}
	}

	// The kaprog's view is scoped to their major.
	var jurusanID string
	if claims.Role == models.RoleGuru && claims.HasHat(models.HatKaprog) {
		if guru, err := h.guru.GetByID(c.Request.Context(), claims.GuruID); err == nil && guru.JurusanID != nil {
			jurusanID = *guru.JurusanID
		}
	}

	rows, total, err := h.service.List(c.Request.Context(), claims, query, jurusanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rows, total)
}

// Get godoc
// @Summary Get transfer request detail
// @Tags Transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} response.Envelope
// @Router /transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	transfer, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfer)
}

// Document godoc
// @Summary Get a signed download link for the supporting document
// @Tags Transfers
// @Produce json
// @Param id path string true "Transfer ID"
// @Success 200 {object} response.Envelope
// @Router /transfers/{id}/document [get]
func (h *TransferHandler) Document(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	// Visibility rides on the same scoping as Get.
	transfer, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if transfer.DocumentURL == nil || *transfer.DocumentURL == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "transfer has no supporting document"))
		return
	}
	token, expiresAt, err := h.signer.Generate(transfer.ID, *transfer.DocumentURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"download_url": "/files/" + token,
		"expires_at":   expiresAt,
	})
}

// Decide godoc
// @Summary Record one chain link's decision
// @Tags Transfers
// @Accept json
// @Produce json
// @Param id path string true "Transfer ID"
// @Param payload body dto.DecideTransferRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /transfers/{id}/decision [post]
func (h *TransferHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.GuruID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	transfer, err := h.service.Decide(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfer)
}
