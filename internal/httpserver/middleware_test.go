package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neomnia/content-mania-sub004/internal/auth"
	"github.com/neomnia/content-mania-sub004/pkg/rbac"
)

const testSecret = "middleware-test-secret"

type fakeRoleSource struct {
	roles rbac.RoleSet
	err   error
}

func (f *fakeRoleSource) ListRoles(ctx context.Context, userID int) (rbac.RoleSet, error) {
	return f.roles, f.err
}

func newAuthedEngine(roleSource RoleSource, required rbac.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/")
	group.Use(AuthMiddleware(testSecret, zap.NewNop()))
	if roleSource != nil {
		group.Use(RequireRole(roleSource, required, zap.NewNop()))
	}
	group.GET("/protected", func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
	})
	return r
}

func signedToken(t *testing.T, userID int) string {
	t.Helper()
	token, err := auth.CreateToken(auth.Identity{UserID: userID, Email: "u@example.com"}, testSecret)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	engine := newAuthedEngine(nil, rbac.RoleInvalid)

	t.Run("no credential yields 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid cookie passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signedToken(t, 5)})
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"user_id":5`)
	})

	t.Run("valid bearer header passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, 6))
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("tampered token yields 401, not 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signedToken(t, 5) + "x"})
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	t.Run("user without the role is forbidden", func(t *testing.T) {
		engine := newAuthedEngine(&fakeRoleSource{roles: rbac.RoleSet{rbac.RoleUser}}, rbac.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signedToken(t, 7)})
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("super_admin satisfies an admin requirement", func(t *testing.T) {
		engine := newAuthedEngine(&fakeRoleSource{roles: rbac.RoleSet{rbac.RoleSuperAdmin}}, rbac.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signedToken(t, 8)})
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("anonymous request never reaches the role check", func(t *testing.T) {
		engine := newAuthedEngine(&fakeRoleSource{roles: rbac.RoleSet{rbac.RoleSuperAdmin}}, rbac.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role lookup failure is a server error", func(t *testing.T) {
		engine := newAuthedEngine(&fakeRoleSource{err: errors.New("db down")}, rbac.RoleAdmin)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signedToken(t, 9)})
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
