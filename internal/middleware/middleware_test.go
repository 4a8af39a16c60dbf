package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lunchbox-be/internal/auth"
	"lunchbox-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("ValidToken_SetsIdentity", func(t *testing.T) {
		token, err := auth.GenerateToken(1, "parent@example.com", utils.RoleParent, time.Hour)
		require.NoError(t, err)

		var gotID uint
		var gotOK bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID, gotOK = utils.GetUserIDFromContext(r.Context())
		})

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		AuthMiddleware(inner).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, gotOK)
		assert.Equal(t, uint(1), gotID)
	})

	t.Run("NoToken_PassesThroughAnonymous", func(t *testing.T) {
		var gotOK bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, gotOK = utils.GetUserIDFromContext(r.Context())
		})

		req := httptest.NewRequest("GET", "/orders", nil)
		AuthMiddleware(inner).ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, gotOK)
	})

	t.Run("GarbageToken_PassesThroughAnonymous", func(t *testing.T) {
		var gotOK bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, gotOK = utils.GetUserIDFromContext(r.Context())
		})

		req := httptest.NewRequest("GET", "/orders", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		AuthMiddleware(inner).ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, gotOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 1, "parent@example.com", utils.RoleParent))

		w := httptest.NewRecorder()
		RequireAuth(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Anonymous_Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/orders", nil)

		w := httptest.NewRecorder()
		RequireAuth(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireStaff(t *testing.T) {
	t.Run("Staff", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/admin/orders/status", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 2, "staff@example.com", utils.RoleStaff))

		w := httptest.NewRecorder()
		RequireStaff(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Parent_Forbidden", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/admin/orders/status", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 1, "parent@example.com", utils.RoleParent))

		w := httptest.NewRecorder()
		RequireStaff(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Anonymous_Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/admin/orders/status", nil)

		w := httptest.NewRecorder()
		RequireStaff(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestResolveRateTier(t *testing.T) {
	strictReq := httptest.NewRequest("POST", "/payment/webhook", nil)
	_, _, tier := resolveRateTier(strictReq)
	assert.Equal(t, "strict", tier)

	checkoutReq := httptest.NewRequest("POST", "/checkout/session", nil)
	_, _, tier = resolveRateTier(checkoutReq)
	assert.Equal(t, "strict", tier)

	generalReq := httptest.NewRequest("GET", "/orders", nil)
	_, _, tier = resolveRateTier(generalReq)
	assert.Equal(t, "general", tier)
}

func TestRateLimitMiddleware_BlocksAfterBurst(t *testing.T) {
	req := httptest.NewRequest("POST", "/checkout/session", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 999, "burst@example.com", utils.RoleParent))

	var lastCode int
	for i := 0; i < burstStrict+1; i++ {
		w := httptest.NewRecorder()
		RateLimitMiddleware(okHandler()).ServeHTTP(w, req)
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
