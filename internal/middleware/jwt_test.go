package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthhq/hearth-api/internal/utils"
)

const testSecret = "test-secret"

var testPrefixes = []string{"/api/v1/ledger", "/api/v1/integrations"}

func newProtectedEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(Protected(testSecret, testPrefixes))
	handler := func(c echo.Context) error {
		userID, _ := c.Get("user_id").(uint64)
		role, _ := c.Get("role").(string)
		return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "role": role})
	}
	e.GET("/api/v1/ledger/entries", handler)
	e.GET("/api/v1/ledgers", handler)
	e.GET("/healthz", handler)
	return e
}

func doGet(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProtectedRejectsMissingToken(t *testing.T) {
	e := newProtectedEcho(t)
	rec := doGet(e, "/api/v1/ledger/entries", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestProtectedAcceptsValidToken(t *testing.T) {
	e := newProtectedEcho(t)
	tok, err := utils.NewAccessToken(testSecret, 7, "parent", 15)
	require.NoError(t, err)

	rec := doGet(e, "/api/v1/ledger/entries", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"role":"parent"}`, rec.Body.String())
}

func TestProtectedBadTokensShareOneBody(t *testing.T) {
	e := newProtectedEcho(t)
	expired, err := utils.NewAccessToken(testSecret, 7, "parent", -1)
	require.NoError(t, err)
	foreign, err := utils.NewAccessToken("other-secret", 7, "parent", 15)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired.Token,
		"wrong secret": foreign.Token,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			rec := doGet(e, "/api/v1/ledger/entries", tok)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		})
	}
}

func TestProtectedGuardsUnregisteredRoutes(t *testing.T) {
	// Prefix enforcement runs before routing, so an unimplemented path under
	// a protected prefix answers 401, not 404.
	e := newProtectedEcho(t)
	rec := doGet(e, "/api/v1/integrations/servers", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedPassesOutsidePrefixes(t *testing.T) {
	e := newProtectedEcho(t)

	rec := doGet(e, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Prefix matching stops at segment boundaries.
	rec = doGet(e, "/api/v1/ledgers", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
