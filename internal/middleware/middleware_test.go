package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), CORSMiddleware([]string{"https://app.example.com"}))

	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	r.GET("/maybe", OptionalAuth(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, "anon:"+GetUserID(c))
	})
	r.GET("/admin", AuthMiddleware(tokens), RequirePermission(auth.PermTutorManage), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)
	userToken, _, err := tokens.GenerateToken("u1", models.RoleUser)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w = do(r, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = do(r, http.MethodGet, "/me", userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)
	userToken, _, _ := tokens.GenerateToken("u1", models.RoleUser)

	assert.Equal(t, "anon:", do(r, http.MethodGet, "/maybe", "").Body.String())
	assert.Equal(t, "anon:", do(r, http.MethodGet, "/maybe", "garbage").Body.String())
	assert.Equal(t, "anon:u1", do(r, http.MethodGet, "/maybe", userToken).Body.String())
}

func TestRequirePermission(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newRouter(tokens)
	userToken, _, _ := tokens.GenerateToken("u1", models.RoleUser)
	adminToken, _, _ := tokens.GenerateToken("a1", models.RoleAdmin)

	w := do(r, http.MethodGet, "/admin", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	w = do(r, http.MethodGet, "/admin", adminToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(auth.NewTokenManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagation(t *testing.T) {
	r := newRouter(auth.NewTokenManager("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
