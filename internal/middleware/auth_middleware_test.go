package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func setupRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(testSecret))
	return r, authorized
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r, authorized := setupRouter()
	authorized.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/protected", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header is required")
}

func TestJWTAuthMiddleware_BadFormat(t *testing.T) {
	r, authorized := setupRouter()
	authorized.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Authorization header format must be Bearer {token}")
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r, authorized := setupRouter()
	authorized.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid or expired token")
}

func TestJWTAuthMiddleware_InvalidUserID(t *testing.T) {
	r, authorized := setupRouter()
	authorized.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := makeToken(t, jwt.MapClaims{
		"user_id": "not-a-uuid",
		"role":    "employee",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid user ID in token")
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	r, authorized := setupRouter()

	userID := uuid.New()
	var gotUserID uuid.UUID
	var gotRole string
	authorized.GET("/protected", func(c *gin.Context) {
		idValue, _ := c.Get(middleware.UserIDKey)
		gotUserID = idValue.(uuid.UUID)
		roleValue, _ := c.Get(middleware.UserRoleKey)
		gotRole = roleValue.(string)
		c.Status(http.StatusOK)
	})

	token := makeToken(t, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "manager",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, gotUserID)
	assert.Equal(t, "manager", gotRole)
}

func TestRequireRole_Allowed(t *testing.T) {
	r, authorized := setupRouter()
	managers := authorized.Group("/")
	managers.Use(middleware.RequireRole("manager", "admin"))
	managers.GET("/managers-only", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := makeToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest("GET", "/managers-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	r, authorized := setupRouter()
	managers := authorized.Group("/")
	managers.Use(middleware.RequireRole("manager", "admin"))
	managers.GET("/managers-only", func(c *gin.Context) { c.Status(http.StatusOK) })

	token := makeToken(t, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "employee",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest("GET", "/managers-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "Insufficient role for this operation")
}
