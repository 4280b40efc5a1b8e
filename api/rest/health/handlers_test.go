package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		checks []Check
		code   int
		status string
	}{
		{"all ok", []Check{{Name: "database", Probe: ok, Required: true}}, http.StatusOK, `"status":"healthy"`},
		{"optional down", []Check{{Name: "database", Probe: ok, Required: true}, {Name: "redis", Probe: failing}}, http.StatusOK, `"status":"degraded"`},
		{"required down", []Check{{Name: "database", Probe: failing, Required: true}}, http.StatusServiceUnavailable, `"status":"unhealthy"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			RegisterRoutes(r, "test", tc.checks...)

			assert.Equal(t, http.StatusOK, get(r, "/health").Code)

			w := get(r, "/api/health")
			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.status)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}
