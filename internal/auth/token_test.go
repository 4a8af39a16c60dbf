package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		token, err := GenerateToken(42, "parent@example.com", "parent", time.Hour)
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token)
		assert.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "parent@example.com", claims.Email)
		assert.Equal(t, "parent", claims.Role)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := GenerateToken(42, "parent@example.com", "parent", -time.Minute)
		assert.NoError(t, err)

		_, err = ParseToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-token")
		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})

		assert.Equal(t, "cookie-token", ExtractAccessToken(req))
	})

	t.Run("BearerHeader", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", ExtractAccessToken(req))
	})

	t.Run("CookieWinsOverHeader", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
		req.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "cookie-token", ExtractAccessToken(req))
	})

	t.Run("Missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		assert.Equal(t, "", ExtractAccessToken(req))
	})
}
