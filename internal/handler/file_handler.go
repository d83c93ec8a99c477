package handler

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
	"github.com/maganghub/maganghub-api/pkg/response"
	"github.com/maganghub/maganghub-api/pkg/storage"
)

type fileStore interface {
	Open(name string) (*os.File, error)
}

// FileHandler streams stored files against time-limited signed tokens. The
// route carries no auth middleware: the token signature is the credential, so
// browser image tags and download links work without an Authorization header.
type FileHandler struct {
	signer *storage.SignedURLSigner
	store  fileStore
}

// NewFileHandler constructs the handler.
func NewFileHandler(signer *storage.SignedURLSigner, store fileStore) *FileHandler {
	return &FileHandler{signer: signer, store: store}
}

// Download godoc
// @Summary Download a stored file with a signed token
// @Tags Files
// @Param token path string true "Signed download token"
// @Success 200
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(relPath)+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
