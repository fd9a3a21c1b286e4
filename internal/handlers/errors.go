package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/backend/internal/apperr"
)

// respondError maps a service error onto an HTTP response. Unknown errors
// are masked as a generic 500; the real cause stays server-side.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(statusForKind(appErr.Kind), gin.H{
			"error":   appErr.Code,
			"message": appErr.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An unexpected error occurred",
	})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyExists:
		return http.StatusConflict
	case apperr.KindPermissionDenied, apperr.KindSelfActionForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidAssignee:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid request format",
		"details": err.Error(),
	})
}
