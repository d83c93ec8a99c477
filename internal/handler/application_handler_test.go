package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/middleware"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type applicationServiceMock struct {
	submitResp *models.Application
	submitErr  error
	decideErr  error
	lastQuery  dto.ApplicationQuery
}

func (m *applicationServiceMock) Submit(ctx context.Context, siswaID string, req dto.SubmitApplicationRequest) (*models.Application, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitResp, nil
}

func (m *applicationServiceMock) Decide(ctx context.Context, id, actorGuruID string, req dto.DecideApplicationRequest) (*models.Application, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return &models.Application{ID: id, Status: models.ApplicationStatusApproved}, nil
}

func (m *applicationServiceMock) Complete(ctx context.Context, id string) error { return nil }

func (m *applicationServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Application, error) {
	return &models.Application{ID: id}, nil
}

func (m *applicationServiceMock) List(ctx context.Context, claims *models.JWTClaims, query dto.ApplicationQuery) ([]models.ApplicationDetail, int, error) {
	m.lastQuery = query
	return []models.ApplicationDetail{}, 0, nil
}

type letterServiceMock struct{}

func (letterServiceMock) Render(ctx context.Context, applicationID string) ([]byte, string, error) {
	return []byte("%PDF-1.4"), "surat-pengantar.pdf", nil
}

func newApplicationTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestApplicationHandlerSubmitRequiresStudentClaims(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	body, _ := json.Marshal(dto.SubmitApplicationRequest{IndustriID: "ind-1"})
	req, _ := http.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplicationHandlerSubmitCreated(t *testing.T) {
	svc := &applicationServiceMock{submitResp: &models.Application{ID: "app-1", Status: models.ApplicationStatusPending}}
	handler := NewApplicationHandler(svc, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	body, _ := json.Marshal(dto.SubmitApplicationRequest{IndustriID: "ind-1", Catatan: "permohonan"})
	req, _ := http.NewRequest(http.MethodPost, "/applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleSiswa, SiswaID: "siswa-1"})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)
}

func TestApplicationHandlerSubmitInvalidBody(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/applications", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleSiswa, SiswaID: "siswa-1"})

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationHandlerDecideConflictPassthrough(t *testing.T) {
	svc := &applicationServiceMock{decideErr: appErrors.Clone(appErrors.ErrAlreadyDecided, "already decided as APPROVED")}
	handler := NewApplicationHandler(svc, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	body, _ := json.Marshal(dto.DecideApplicationRequest{Status: "approved"})
	req, _ := http.NewRequest(http.MethodPost, "/applications/app-1/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleGuru, GuruID: "guru-k"})

	handler.Decide(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrAlreadyDecided.Code, envelope.Error.Code)
}

func TestApplicationHandlerListParsesStatusCSV(t *testing.T) {
	svc := &applicationServiceMock{}
	handler := NewApplicationHandler(svc, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/applications?status=pending,approved&page=2", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleAdmin})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.ApplicationStatus{models.ApplicationStatusPending, models.ApplicationStatusApproved}, svc.lastQuery.Statuses)
	assert.Equal(t, 2, svc.lastQuery.Page)
}

func TestApplicationHandlerLetterSetsDisposition(t *testing.T) {
	handler := NewApplicationHandler(&applicationServiceMock{}, letterServiceMock{})
	c, w := newApplicationTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/applications/app-1/letter", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-2", Role: models.RoleAdmin})

	handler.Letter(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "surat-pengantar.pdf")
}
