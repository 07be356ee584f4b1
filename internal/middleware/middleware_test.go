package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, key string, claims JWTClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func claimsFor(userID, rol string, exp time.Time) JWTClaims {
	return JWTClaims{
		UserID: userID,
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	var actor *uuid.UUID
	r := gin.New()
	r.GET("/x", JWTAuth(secret), RequireRole(RolAdministrador), func(c *gin.Context) {
		actor = ActorID(c)
		c.Status(http.StatusOK)
	})

	id := uuid.New()
	valid := token(t, secret, claimsFor(id.String(), RolAdministrador, time.Now().Add(time.Hour)))

	w := serve(r, "Bearer "+valid)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, actor)
	assert.Equal(t, id, *actor)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, valid).Code)

	expired := token(t, secret, claimsFor(id.String(), RolAdministrador, time.Now().Add(-time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+expired).Code)

	otherKey := token(t, "otra-clave", claimsFor(id.String(), RolAdministrador, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer "+otherKey).Code)

	vendedor := token(t, secret, claimsFor(id.String(), RolVendedor, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer "+vendedor).Code)
}

func TestActorID_MalformedUser(t *testing.T) {
	var actor *uuid.UUID
	called := false
	r := gin.New()
	r.GET("/x", JWTAuth(secret), func(c *gin.Context) {
		called = true
		actor = ActorID(c)
		c.Status(http.StatusOK)
	})

	tok := token(t, secret, claimsFor("no-uuid", RolVendedor, time.Now().Add(time.Hour)))
	require.Equal(t, http.StatusOK, serve(r, "Bearer "+tok).Code)
	assert.True(t, called)
	assert.Nil(t, actor)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimiter(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := &rateLimiter{limit: 1, window: time.Minute, entries: make(map[string]*rateEntry)}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	ok, _ := rl.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, _ = rl.allow("10.0.0.1", now.Add(time.Second))
	assert.False(t, ok)
	ok, _ = rl.allow("10.0.0.2", now.Add(time.Second))
	assert.True(t, ok)

	ok, _ = rl.allow("10.0.0.1", now.Add(2*time.Minute))
	assert.True(t, ok)

	// Purge drops expired windows.
	rl.purge(now.Add(10 * time.Minute))
	assert.Empty(t, rl.entries)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "caja-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "caja-1", w.Body.String())
	assert.Equal(t, "caja-1", w.Header().Get(RequestIDHeader))

	w = serve(r, "")
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestErrorHandlerAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Recovery())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/err", "/panic"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Contains(t, w.Body.String(), "error_interno")
		assert.NotContains(t, w.Body.String(), "pq:")
	}
}

func TestErrorHandler_KeepsResponseAlreadyWritten(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"code": "caja_ya_cerrada"})
		_ = c.Error(errors.New("ya cerrada"))
	})

	w := serve(r, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "caja_ya_cerrada")
	assert.NotContains(t, w.Body.String(), "error_interno")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
