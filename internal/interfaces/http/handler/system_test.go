package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scentpos/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping() error { return p.err }

func newSystemRouter(db Pinger) *gin.Engine {
	router := gin.New()
	h := NewSystemHandler(db)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestSystemHealth(t *testing.T) {
	router := newSystemRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/system/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestSystemReady(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		router := newSystemRouter(&stubPinger{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/system/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		router := newSystemRouter(&stubPinger{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/system/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
	})

	t.Run("no pinger configured", func(t *testing.T) {
		router := newSystemRouter(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/system/ready", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemInfo(t *testing.T) {
	router := newSystemRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/system/info", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_version")
}
