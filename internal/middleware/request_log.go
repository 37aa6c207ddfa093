package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"afrizone/internal/logging"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	loggerKey       = "logger"
)

// RequestID tags the request with the incoming X-Request-ID, or a fresh one,
// and stores a logger carrying it.
func RequestID(base logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Set(loggerKey, base.WithField(requestIDKey, id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger returns the request-scoped logger, or the standard logger outside a request chain.
func Logger(c *gin.Context) logrus.FieldLogger {
	if value, ok := c.Get(loggerKey); ok {
		if entry, ok := value.(logrus.FieldLogger); ok {
			return entry
		}
	}
	return logrus.StandardLogger()
}

// AccessLog writes one entry per request once the handler chain has finished.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logging.Area(Logger(c), logging.AreaHTTP).WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"route":    c.FullPath(),
			"path":     c.Request.URL.Path,
			"status":   status,
			"latency":  time.Since(start).String(),
			"clientIp": c.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("request served")
		case status >= 400:
			entry.Warn("request served")
		default:
			entry.Info("request served")
		}
	}
}
