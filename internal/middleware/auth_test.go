package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

func guardContext(user *models.User) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if user != nil {
		c.Set(ContextUserKey, user)
	}
	return c
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireModerator(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{"student is rejected", models.RoleStudent, http.StatusForbidden},
		{"teacher passes", models.RoleTeacher, http.StatusOK},
		{"admin passes", models.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := guardContext(&models.User{Role: tt.role})
			err := RequireModerator()(okHandler)(c)
			if tt.wantCode == http.StatusOK {
				assert.NoError(t, err)
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if assert.True(t, ok) {
				assert.Equal(t, tt.wantCode, httpErr.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	c := guardContext(&models.User{Role: models.RoleTeacher})
	err := RequireAdmin()(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	}

	c = guardContext(&models.User{Role: models.RoleAdmin})
	assert.NoError(t, RequireAdmin()(okHandler)(c))
}

func TestGuardsRejectUnauthenticated(t *testing.T) {
	c := guardContext(nil)
	err := RequireModerator()(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	}
}

func TestParseLocalJWTSecretMustMatch(t *testing.T) {
	claims := &models.JwtCustomClaims{
		UserID: 42,
		Email:  "student@school.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("session-secret"))
	assert.NoError(t, err)

	parsed, err := parseLocalJWT(signed, "session-secret")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)

	_, err = parseLocalJWT(signed, "another-secret")
	assert.Error(t, err)
}

func TestCurrentUser(t *testing.T) {
	user := &models.User{Role: models.RoleStudent}
	c := guardContext(user)
	assert.Equal(t, user, CurrentUser(c))

	assert.Nil(t, CurrentUser(guardContext(nil)))
}
