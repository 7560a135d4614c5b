package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-workforce/internal/domain"
	"go-workforce/internal/middleware"
	"go-workforce/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fakeRBAC struct {
	allow map[string]bool
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.allow[req.Role+":"+req.Resource+":"+req.Action], nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func TestAccess(t *testing.T) {
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) }

	t.Run("disabled lets everything through", func(t *testing.T) {
		var access *middleware.Access
		r := setupRouter()
		r.DELETE("/x", access.Authenticate(), access.Authorize("employee", "delete"), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	access := &middleware.Access{
		Enabled: true,
		Secret:  testSecret,
		RBAC:    &fakeRBAC{allow: map[string]bool{"viewer:employee:read": true}},
	}
	r := setupRouter()
	r.GET("/x", access.Authenticate(), access.Authorize("employee", "read"), ok)
	r.DELETE("/x", access.Authenticate(), access.Authorize("employee", "delete"), ok)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token not found")
	})

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "u-1", "role": "viewer"}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u-1", w.Body.String())
	})

	t.Run("forbidden action", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "u-1", "role": "viewer"}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "employee:delete")
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"sub":  "u-1",
			"role": "viewer",
			"exp":  time.Now().Add(-time.Hour).Unix(),
		}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token expired")
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).SignedString([]byte("other"))
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})
}

func TestContextLogger(t *testing.T) {
	r := setupRouter()
	r.Use(middleware.ContextLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-42", w.Body.String())
		assert.Equal(t, "rid-42", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestRateLimitByIP(t *testing.T) {
	r := setupRouter()
	r.Use(middleware.RateLimitByIP(1, 2))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIdempotency(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cacheKey := "idemp:/api/empleados::key-1"

	r := setupRouter()
	r.POST("/api/empleados", middleware.Idempotency(rdb, time.Hour, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	t.Run("first request stores the response", func(t *testing.T) {
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)
		mock.Regexp().ExpectSet(cacheKey, `.+`, time.Hour).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		req := httptest.NewRequest(http.MethodPost, "/api/empleados", strings.NewReader(`{}`))
		req.Header.Set(middleware.IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay", func(t *testing.T) {
		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":{"ok":true}}`)

		req := httptest.NewRequest(http.MethodPost, "/api/empleados", strings.NewReader(`{}`))
		req.Header.Set(middleware.IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in flight duplicate", func(t *testing.T) {
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		req := httptest.NewRequest(http.MethodPost, "/api/empleados", strings.NewReader(`{}`))
		req.Header.Set(middleware.IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no header skips redis", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/empleados", strings.NewReader(`{}`)).WithContext(context.Background()))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
