package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const redacted = "[redacted]"

// scrubHeaders drops credential material before a header set reaches the log.
func scrubHeaders(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "authorization") || strings.Contains(lk, "cookie") {
			clone[k] = []string{redacted}
		}
	}
	return clone
}

// RequestLogger logs each request on the way in (debug) and out (info).
// Paths in quiet are logged at debug only, which keeps probes out of the info stream.
func RequestLogger(log *zap.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		reqHeaders, _ := json.Marshal(scrubHeaders(c.Request.Header))
		log.Debug("↘︎ incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("origin", c.GetHeader("Origin")),
			zap.ByteString("hdr", reqHeaders),
		)

		ts := time.Now()
		c.Next()

		latency := time.Since(ts)
		respStatus := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", respStatus),
			zap.Duration("latency", latency),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		}

		for _, e := range c.Errors {
			log.Error("handler error", append(fields, zap.Error(e.Err))...)
		}

		switch _, isQuiet := skip[path]; {
		case c.IsAborted() && respStatus >= http.StatusInternalServerError:
			log.Error("↗︎ aborted", fields...)
		case c.IsAborted():
			log.Warn("↗︎ aborted", fields...)
		case isQuiet:
			log.Debug("↗︎ completed", fields...)
		default:
			log.Info("↗︎ completed", fields...)
		}
	}
}
