package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"tandem/internal/auth"
)

func newTestRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(zaptest.NewLogger(t)))
	router.Use(extra...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":      c.GetString("userID"),
			"householdID": c.GetString("householdID"),
		})
	})
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(&auth.User{
		ID:          "test-user-id",
		HouseholdID: "test-household",
		Email:       "test@example.com",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return tok
}

// TestAuthMiddleware_MissingAuthHeader tests the middleware with missing Authorization header
func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	w := request(newTestRouter(t), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidAuthFormat tests the middleware with invalid Bearer format
func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	w := request(newTestRouter(t), "InvalidFormat")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_InvalidToken tests the middleware with an invalid token
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	w := request(newTestRouter(t), "Bearer invalid_token_xyz")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

// TestAuthMiddleware_ValidToken tests the middleware with a valid token
func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	w := request(newTestRouter(t), "Bearer "+token(t, auth.RoleMember))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if body := w.Body.String(); body != `{"householdID":"test-household","userID":"test-user-id"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestRequireRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	router := newTestRouter(t, RequireRole(auth.RoleOwner))

	if w := request(router, "Bearer "+token(t, auth.RoleMember)); w.Code != http.StatusForbidden {
		t.Errorf("member: expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	if w := request(router, "Bearer "+token(t, auth.RoleOwner)); w.Code != http.StatusOK {
		t.Errorf("owner: expected status %d, got %d", http.StatusOK, w.Code)
	}
}
