package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jaevor/go-nanoid"
)

const (
	loggerKey       = "logger"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger stores a request-scoped logger in the gin context and logs
// the outcome of every request. Incoming X-Request-ID values are kept.
func RequestLogger(base *slog.Logger, m *metrics.RateMetrics) (gin.HandlerFunc, error) {
	newID, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("request id generator: %w", err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = newID()
		}

		log := base.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		c.Header(RequestIDHeader, requestID)
		c.Set(loggerKey, log)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, c.Request.Method, status, latency)

		attrs := []any{
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			log.Error("request completed", attrs...)
		case status >= 400:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}, nil
}

// LoggerFrom returns the request-scoped logger, or slog.Default outside of
// RequestLogger.
func LoggerFrom(c *gin.Context) *slog.Logger {
	v, ok := c.Get(loggerKey)
	if !ok {
		return slog.Default()
	}
	log, ok := v.(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return log
}
