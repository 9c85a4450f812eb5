package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	pubmodel "gitlab.com/dirk.krummacker/contacts-api/pkg/model"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"

	// maxRequestIDLength bounds ids taken over from clients.
	maxRequestIDLength = 128
)

// requestID tags every request with an id. An id sent by the client is kept, otherwise a new one
// is generated. The id is returned in the response header.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// logRequests writes one log entry per request once it has been answered.
func logRequests(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if last := c.Errors.Last(); last != nil {
			entry = entry.WithError(last.Err)
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// meterRequests counts requests and records their durations per method, route and status.
func meterRequests(set *metrics.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, c.Request.Method, route, c.Writer.Status())
		set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
		set.GetOrCreateHistogram(`http_request_duration_seconds` + labels).UpdateDuration(start)
	}
}

// recovery turns a panic in a handler into an INTERNAL SERVER ERROR response, so that a single
// failing request never takes the service down.
func recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		description := fmt.Sprint(recovered)
		log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"panic":      description,
		}).Error("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, pubmodel.Error{Error: description})
	})
}
