package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/auth"
	"storefront/database"
	"storefront/logger"
	"storefront/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *auth.TokenManager, *database.Store) {
	t.Helper()
	store := database.NewMemoryStore().Store()
	tokens := auth.NewTokenManager("mw-secret", time.Hour)

	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	protected := r.Group("/", AuthMiddleware(tokens, store.Tokens))
	protected.GET("/me", func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID.Hex(), "role": id.Role})
	})
	protected.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens, store
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r, tokens, store := newRouter(t)
	uid := primitive.NewObjectID()
	token, exp, err := tokens.Issue(uid, models.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "not.a.jwt").Code)

	w := get(r, "/me", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uid.Hex())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	require.NoError(t, store.Tokens.Revoke(context.Background(), token, exp))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r, tokens, _ := newRouter(t)
	user, _, err := tokens.Issue(primitive.NewObjectID(), models.RoleUser)
	require.NoError(t, err)
	admin, _, err := tokens.Issue(primitive.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", user).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", admin).Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	r, _, _ := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(nil)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	get(r, "/ping/1", "")
	get(r, "/ping/2", "")
	get(r, "/nowhere", "")

	w := get(r, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	out := string(body)
	assert.True(t, strings.Contains(out, `storefront_http_requests_total{method="GET",route="/ping/:id",status="200"} 2`), out)
	assert.Contains(t, out, `route="unmatched",status="404"`)
	assert.Contains(t, out, "storefront_http_request_duration_ms_bucket")
}

func TestRequestLoggerPropagatesID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = get(r, "/ping", "")
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}
