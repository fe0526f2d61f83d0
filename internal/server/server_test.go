package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/forum/backend/internal/auth"
	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/handlers"
	"github.com/emilythestrangee/forum/backend/internal/middleware"
)

const (
	secret = "server-secret"
	postID = "0b8f5a52-3a0b-4c59-9d0a-4a7f0e7e8d11"
)

type fakeDB struct{}

func (fakeDB) Health() map[string]string { return map[string]string{"status": "up"} }

// newRouter wires no services, so only requests rejected before reaching
// one may be sent.
func newRouter(origins ...string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg := config.Config{Port: "0", GinMode: "test", JWTSecret: secret, CORSOrigins: origins}
	return New(cfg, handlers.NewHandler(handlers.Services{DB: fakeDB{}})).RegisterRoutes()
}

func signed(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestHealth(t *testing.T) {
	r := newRouter()
	for _, path := range []string{"/health", "/api/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter()
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/" + postID},
		{http.MethodDelete, "/api/posts/" + postID},
		{http.MethodPost, "/api/posts/" + postID + "/vote"},
		{http.MethodPost, "/api/posts/" + postID + "/comments"},
		{http.MethodPut, "/api/comments/" + postID},
		{http.MethodDelete, "/api/comments/" + postID},
		{http.MethodPost, "/api/comments/" + postID + "/vote"},
		{http.MethodGet, "/api/communities/my-communities"},
		{http.MethodPost, "/api/communities"},
		{http.MethodPatch, "/api/communities/golang"},
		{http.MethodPost, "/api/communities/golang/membership"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.path)
	}
}

func TestVoteWithTokenReachesHandler(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/vote", strings.NewReader(`{"vote_type":7}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signed(t))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid vote type"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/posts/"+postID+"/vote", strings.NewReader(`{"vote_type":1}`))
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication failed"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	preflight := func(r http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight(newRouter(), "http://anywhere.test")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	r := newRouter("http://app.test")
	w = preflight(r, "http://app.test")
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight(r, "http://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
