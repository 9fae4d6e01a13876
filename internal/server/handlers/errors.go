package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/dashboard"
	"github.com/mamadbah2/harvestguard/pkg/clients/weather"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownProfile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound), errors.Is(err, weather.ErrUnknownLocation):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to a status and a stable error code.
// Internal failures never leak their message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	body := gin.H{"error": dashboard.ErrorCode(err)}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		body["message"] = err.Error()
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": dashboard.CodeInvalidInput, "message": err.Error()})
}
