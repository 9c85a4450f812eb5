package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// panickingStore fails every call in the most unfriendly way.
type panickingStore struct{}

func (panickingStore) ListAll(context.Context) ([]model.Contact, error) {
	panic("storage exploded")
}

func (panickingStore) GetByID(context.Context, int64) (model.Contact, error) {
	panic("storage exploded")
}

func (panickingStore) Create(context.Context, model.ContactFields) (model.Contact, error) {
	panic("storage exploded")
}

func (panickingStore) Update(context.Context, int64, model.ContactFields) (model.Contact, error) {
	panic("storage exploded")
}

func (panickingStore) Delete(context.Context, int64) error {
	panic("storage exploded")
}

func (panickingStore) Ping(context.Context) error {
	return errors.New("database is gone")
}

func serve(t *testing.T, router *gin.Engine, request *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func newRouter(t *testing.T, store ContactStore, log *logrus.Logger, cfg config.ServerConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.ReleaseMode)
	router, err := SetupHttpRouter(NewHandler(store, log), cfg)
	require.NoError(t, err)
	return router
}

// TestPanicIsRecovered expects that a panicking handler results in an INTERNAL SERVER ERROR while
// the service keeps answering.
func TestPanicIsRecovered(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	for i := 0; i < 2; i++ {
		request, _ := http.NewRequest("GET", "/api/contacts", nil)
		recorder := serve(t, router, request)
		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.JSONEq(t, `{"error": "storage exploded"}`, recorder.Body.String())
	}
}

func TestRequestIDIsGenerated(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	request, _ := http.NewRequest("GET", "/liveness", nil)
	first := serve(t, router, request)
	second := serve(t, router, request)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Len(t, first.Header().Get(requestIDHeader), 36)
	assert.NotEqual(t, first.Header().Get(requestIDHeader), second.Header().Get(requestIDHeader))
}

func TestRequestIDIsKept(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	request, _ := http.NewRequest("GET", "/liveness", nil)
	request.Header.Set(requestIDHeader, "trace-4711")
	recorder := serve(t, router, request)
	assert.Equal(t, "trace-4711", recorder.Header().Get(requestIDHeader))

	request.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	recorder = serve(t, router, request)
	assert.Len(t, recorder.Header().Get(requestIDHeader), 36)
}

// TestRequestsAreLogged expects one log entry per request at a level matching the status code.
func TestRequestsAreLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	cfg := serverConfig
	cfg.Logging = "on"
	router := newRouter(t, panickingStore{}, log, cfg)

	request, _ := http.NewRequest("GET", "/liveness", nil)
	request.Header.Set(requestIDHeader, "trace-1")
	serve(t, router, request)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "request handled", entry.Message)
	assert.Equal(t, "trace-1", entry.Data["request_id"])
	assert.Equal(t, "/liveness", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	hook.Reset()
	request, _ = http.NewRequest("GET", "/api/contacts/abc", nil)
	serve(t, router, request)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRequestLoggingOff(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := newRouter(t, panickingStore{}, log, serverConfig)

	request, _ := http.NewRequest("GET", "/liveness", nil)
	serve(t, router, request)
	assert.Empty(t, hook.Entries)
}

func TestCorsPreflight(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	request, _ := http.NewRequest("OPTIONS", "/api/contacts", nil)
	request.Header.Set("Origin", "http://example.com")
	request.Header.Set("Access-Control-Request-Method", "POST")
	recorder := serve(t, router, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCorsRestrictedOrigins(t *testing.T) {
	cfg := serverConfig
	cfg.AllowedOrigins = []string{"https://contacts.example.com"}
	router := newRouter(t, panickingStore{}, logger.Discard(), cfg)

	request, _ := http.NewRequest("OPTIONS", "/api/contacts", nil)
	request.Header.Set("Origin", "https://contacts.example.com")
	request.Header.Set("Access-Control-Request-Method", "DELETE")
	recorder := serve(t, router, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://contacts.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))

	request.Header.Set("Origin", "https://evil.example.com")
	recorder = serve(t, router, request)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestInvalidCorsOrigin(t *testing.T) {
	cfg := serverConfig
	cfg.AllowedOrigins = []string{"contacts.example.com"}
	_, err := SetupHttpRouter(NewHandler(panickingStore{}, logger.Discard()), cfg)
	assert.Error(t, err)
}

func TestReadiness(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	mock.ExpectPing()

	recorder := runTest(t, db, "GET", "/readiness", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status": "ok"}`, recorder.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadinessWithoutDatabase(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	request, _ := http.NewRequest("GET", "/readiness", nil)
	recorder := serve(t, router, request)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.JSONEq(t, `{"error": "database is gone"}`, recorder.Body.String())
}

// TestMetrics expects the counters of earlier requests in the Prometheus output.
func TestMetrics(t *testing.T) {
	router := newRouter(t, panickingStore{}, logger.Discard(), serverConfig)

	request, _ := http.NewRequest("GET", "/liveness", nil)
	serve(t, router, request)
	request, _ = http.NewRequest("GET", "/nowhere", nil)
	serve(t, router, request)

	request, _ = http.NewRequest("GET", "/metrics", nil)
	recorder := serve(t, router, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.HasPrefix(recorder.Header().Get("Content-Type"), "text/plain"))
	body := recorder.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/liveness",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.Contains(t, body, "http_request_duration_seconds_bucket")
}
