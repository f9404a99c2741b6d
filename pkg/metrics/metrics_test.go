package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init(nil)
		Init(nil)
	})
}

func TestObserveExport(t *testing.T) {
	Init(nil)

	before := testutil.ToFloat64(reportExportTotal.WithLabelValues("devices", "csv", ResultSuccess))
	ObserveExport("devices", "csv", "", 20*time.Millisecond)
	after := testutil.ToFloat64(reportExportTotal.WithLabelValues("devices", "csv", ResultSuccess))
	assert.Equal(t, before+1, after)
}

func TestIncLogin(t *testing.T) {
	Init(nil)

	before := testutil.ToFloat64(loginAttempts.WithLabelValues("limited"))
	IncLogin("limited")
	assert.Equal(t, before+1, testutil.ToFloat64(loginAttempts.WithLabelValues("limited")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	Init(nil)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/devices/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/devices/:id", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/devices/17", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/devices/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "maintenance_http_requests_total"))
}
