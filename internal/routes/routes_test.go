package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/handlers"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/validator"
)

func newEngine(t *testing.T, static *StaticMount) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := handlers.NewBaseHandler(validator.New(), auth.NewTokenManager("s", time.Hour))
	r := gin.New()
	RegisterRoutes(r, handlers.NewAppHandlers(base, &services.ServiceContainer{}, 1<<20), static)
	return r
}

func TestRegisterRoutes_Health(t *testing.T) {
	r := newEngine(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestRegisterRoutes_ProtectedWithoutToken(t *testing.T) {
	r := newEngine(t, nil)

	for _, path := range []string{"/api/v1/match/history", "/api/v1/user/profile", "/api/v1/service/bookings"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRegisterRoutes_StaticUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "avatars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "avatars", "a.txt"), []byte("hi"), 0o644))

	r := newEngine(t, &StaticMount{URLPrefix: "/uploads", Dir: dir})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/avatars/a.txt", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())
}
