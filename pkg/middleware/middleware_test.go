package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestJwtAuthentication(t *testing.T) {
	tm := auth.NewTokenManager(auth.Config{
		Secret:     "secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 2 * time.Hour,
		Issuer:     "test",
	})
	pair, err := tm.IssuePair(3, "librarian", auth.RoleLibrarian)
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		roles        []auth.Role
		expectedCode int
	}{
		{
			name:         "ok",
			header:       "Bearer " + pair.AccessToken,
			roles:        []auth.Role{auth.RoleAdmin, auth.RoleLibrarian},
			expectedCode: http.StatusOK,
		},
		{
			name:         "no header",
			roles:        []auth.Role{auth.RoleLibrarian},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "not bearer",
			header:       "Basic abc",
			roles:        []auth.Role{auth.RoleLibrarian},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "refresh token",
			header:       "Bearer " + pair.RefreshToken,
			roles:        []auth.Role{auth.RoleLibrarian},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "role denied",
			header:       "Bearer " + pair.AccessToken,
			roles:        []auth.Role{auth.RoleAdmin},
			expectedCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/", func(c echo.Context) error {
				p, ok := auth.GetAuthContext(c.Request().Context())
				require.True(t, ok)
				require.Equal(t, "librarian", p.Username)
				require.Equal(t, int64(3), p.UserID)
				return c.NoContent(http.StatusOK)
			}, JwtAuthentication(tm), RequireRoles(tt.roles...))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)
			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestClientInfo(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		client := auth.GetClientContext(c.Request().Context())
		require.Equal(t, "10.0.0.1", client.IP)
		require.Equal(t, "curl/8.0", client.UserAgent)
		return c.NoContent(http.StatusOK)
	}, ClientInfo)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(echo.HeaderXForwardedFor, "10.0.0.1, 192.168.0.1")
	r.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
