package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// statusFor maps an error kind to an HTTP status. Engine failures use
// engineStatus since the formats and download endpoints report them differently.
func statusFor(kind domain.ErrorKind, engineStatus int) int {
	switch kind {
	case domain.ErrKindValidation:
		return http.StatusBadRequest
	case domain.ErrKindExtraction:
		return engineStatus
	case domain.ErrKindAuth:
		return http.StatusUnauthorized
	case domain.ErrKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, engineStatus int) {
	kind := domain.KindOf(err)
	c.JSON(statusFor(kind, engineStatus), gin.H{
		"success":    false,
		"error":      domain.MessageOf(err),
		"error_kind": kind,
	})
}

func respondValidation(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":    false,
		"error":      msg,
		"error_kind": domain.ErrKindValidation,
	})
}
