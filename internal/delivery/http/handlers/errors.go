package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// errorWriter maps domain errors to HTTP statuses. Internal error text is
// only shown when expose is set.
type errorWriter struct {
	expose bool
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedPair):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateNotFound), errors.Is(err, domain.ErrPairNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPairAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (w errorWriter) write(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		if !w.expose {
			msg = "exchange rate source is unavailable"
		}
	case http.StatusInternalServerError:
		middleware.LoggerFrom(c).Error("request failed", "error", err)
		if !w.expose {
			msg = "internal server error"
		}
	}
	c.JSON(status, dto.Fail(msg))
}

func (w errorWriter) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.Fail(msg))
}
