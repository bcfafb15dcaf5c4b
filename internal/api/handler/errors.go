package handler

import (
	"errors"
	"net/http"

	"jobtrack/internal/api/dto"
	"jobtrack/internal/core/ports"
	"jobtrack/internal/document"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps service errors to a status code.
func respondError(c *gin.Context, err error) {
	var ve *document.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.Is(err, ports.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

// respondBindError answers a request that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "invalid payload",
			Fields: document.FromValidator(errs).Fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: what + " not found"})
}
