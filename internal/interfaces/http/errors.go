package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/school-admin/internal/application/service"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrTooManyRows):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateClass), errors.Is(err, service.ErrDuplicateVoucher):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoUsableRows):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the response envelope. Internal errors are not
// echoed to the client.
func (h *Handlers) respondError(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	text := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, errorFields(c, err)...)
		text = msg
	}
	c.JSON(status, Response{Success: false, Error: text})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}
