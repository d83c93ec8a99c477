package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/maganghub/maganghub-api/pkg/errors"
)

// PageSize is the fixed page size for list endpoints.
const PageSize = 10

// Envelope is the common response contract. List responses carry total_all so
// clients can derive total_pages = ceil(total_all / PageSize).
type Envelope struct {
	Data     interface{}      `json:"data,omitempty"`
	Error    *appErrors.Error `json:"error,omitempty"`
	TotalAll *int             `json:"total_all,omitempty"`
	Success  *bool            `json:"success,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

// List sends a paginated list response with total_all metadata.
func List(c *gin.Context, data interface{}, totalAll int) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Envelope{Data: data, TotalAll: &totalAll})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Upload responds with an explicit success flag alongside the stored URLs.
// Clients gate record creation on this flag, not just the HTTP status.
func Upload(c *gin.Context, data interface{}, ok bool) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Envelope{Data: data, Success: &ok})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
