package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("secret")

func serve(t *testing.T, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen, _ = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	}, JWT(testKey))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTValid(t *testing.T) {
	token, err := NewToken("padraic", testKey, time.Now().Add(time.Hour))
	require.NoError(t, err)

	rec, user := serve(t, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "padraic", user)

	rec, user = serve(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "padraic", user)
}

func TestJWTRejected(t *testing.T) {
	expired, err := NewToken("padraic", testKey, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	wrongKey, err := NewToken("padraic", []byte("other"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bearer only", "Bearer ", http.StatusUnauthorized},
		{"expired", expired, http.StatusUnauthorized},
		{"wrong key", wrongKey, http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, user := serve(t, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, user)
		})
	}
}
