package handler

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maganghub/maganghub-api/internal/middleware"
	"github.com/maganghub/maganghub-api/internal/models"
	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func pageFromQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// readMultipartPhotos pulls every file under the given form field into memory,
// capped per file. The services treat the batch as all-or-nothing.
func readMultipartPhotos(form *multipart.Form, field string, maxBytes int64) ([][]byte, error) {
	files := form.File[field]
	photos := make([][]byte, 0, len(files))
	for _, header := range files {
		if maxBytes > 0 && header.Size > maxBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the size limit")
		}
		file, err := header.Open()
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "failed to read photo")
		}
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		_ = file.Close()
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "failed to read photo")
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the size limit")
		}
		photos = append(photos, data)
	}
	return photos, nil
}
