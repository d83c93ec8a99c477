package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maganghub/maganghub-api/internal/dto"
	"github.com/maganghub/maganghub-api/internal/middleware"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
)

type leaveServiceMock struct {
	created    *models.Leave
	createCall int
}

func (m *leaveServiceMock) Create(ctx context.Context, siswaID string, req dto.CreateLeaveRequest, photos [][]byte) (*models.Leave, error) {
	m.createCall++
	return m.created, nil
}

func (m *leaveServiceMock) Update(ctx context.Context, id, siswaID string, req dto.UpdateLeaveRequest, photos [][]byte) (*models.Leave, error) {
	return m.created, nil
}

func (m *leaveServiceMock) Delete(ctx context.Context, id, siswaID string) error { return nil }

func (m *leaveServiceMock) Decide(ctx context.Context, id, guruID string, req dto.DecideLeaveRequest) (*models.Leave, error) {
	return m.created, nil
}

func (m *leaveServiceMock) List(ctx context.Context, claims *models.JWTClaims, statuses []models.LeaveStatus, page int) ([]models.Leave, int, error) {
	return nil, 0, nil
}

func leaveMultipartBody(t *testing.T, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("jenis", "sakit"))
	require.NoError(t, writer.WriteField("tanggal", "2026-09-01"))
	require.NoError(t, writer.WriteField("keterangan", "demam"))
	part, err := writer.CreateFormFile("photos", "bukti.jpg")
	require.NoError(t, err)
	_, err = part.Write(photo)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestLeaveHandlerCreateRejectsOversizePhoto(t *testing.T) {
	svc := &leaveServiceMock{}
	handler := NewLeaveHandler(svc, 16)
	c, w := newApplicationTestContext(t)

	body, contentType := leaveMultipartBody(t, bytes.Repeat([]byte{0xFF}, 64))
	req, _ := http.NewRequest(http.MethodPost, "/leaves", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleSiswa, SiswaID: "siswa-1"})

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
	assert.Equal(t, 0, svc.createCall)
}

func TestLeaveHandlerCreateAcceptsPhotoWithinLimit(t *testing.T) {
	svc := &leaveServiceMock{created: &models.Leave{ID: "leave-1", Status: models.LeaveStatusPending}}
	handler := NewLeaveHandler(svc, 1024)
	c, w := newApplicationTestContext(t)

	body, contentType := leaveMultipartBody(t, bytes.Repeat([]byte{0xFF}, 64))
	req, _ := http.NewRequest(http.MethodPost, "/leaves", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleSiswa, SiswaID: "siswa-1"})

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.createCall)
}
