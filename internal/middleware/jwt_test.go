package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trappazoid/booking-backend/internal/utils"
)

func runJWT(t *testing.T, secret, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := JWTAuth(secret)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, reached
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "USER", 5)
	require.NoError(t, err)

	rec, reached := runJWT(t, "secret", "Bearer "+at.Token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejects(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "USER", 5)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken("secret", 42, "USER", -5)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		header string
	}{
		{"no header", "secret", ""},
		{"not bearer", "secret", "Basic abc"},
		{"garbage token", "secret", "Bearer not.a.jwt"},
		{"wrong secret", "other", "Bearer " + at.Token},
		{"expired", "secret", "Bearer " + expired.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, reached := runJWT(t, tc.secret, tc.header)
			assert.False(t, reached)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole("ADMIN")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		require.NoError(t, handler(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run("ADMIN").Code)
	assert.Equal(t, http.StatusForbidden, run("USER").Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
	assert.Equal(t, http.StatusForbidden, run(123).Code)
}
