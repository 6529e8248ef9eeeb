package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaigenticai/regulens-autoscaler/internal/auth"
	"github.com/gaigenticai/regulens-autoscaler/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestCORS_HonorsConfiguredOrigins(t *testing.T) {
	router := newRouter(CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://dashboard.example.com"},
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	router := newRouter(CORS(config.CORSConfig{}))
	router.OPTIONS("/test", func(c *gin.Context) {
		t.Fatal("handler must not run for preflight")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestPerRoute_EnforcesLimit(t *testing.T) {
	router := newRouter(PerRoute(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestTraceID_RejectsNonUUIDHeader(t *testing.T) {
	router := newRouter(TraceID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TraceIDHeader, "not-a-uuid\ninjected")
	router.ServeHTTP(w, req)

	got := w.Header().Get(TraceIDHeader)
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "garbage trace IDs must be replaced")
}

func TestTraceID_KeepsValidHeader(t *testing.T) {
	router := newRouter(TraceID())
	want := uuid.New().String()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TraceIDHeader, want)
	router.ServeHTTP(w, req)

	assert.Equal(t, want, w.Header().Get(TraceIDHeader))
}

func TestRequestSizeLimit_RejectsOversizedBody(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimit(16))
	router.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 64)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestJWTAuth_CookieFallback(t *testing.T) {
	service := auth.NewService("test-secret", time.Hour)
	token, err := service.GenerateToken(1, "admin")
	require.NoError(t, err)

	router := newRouter(JWTAuth(service))

	// No credentials at all.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Cookie only, the way a browser reaches the websocket endpoint.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
