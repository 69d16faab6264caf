package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

// ContextUserKey is the echo context key the resolved profile is stored under.
const ContextUserKey = "currentUser"

// AuthMiddleware authenticates the request and resolves the caller's profile
// row. It accepts either a locally issued session JWT or a Firebase ID token
// in the Authorization header. The profile (including role) is loaded from
// PostgreSQL on every request: role never travels inside a token.
func AuthMiddleware(authClient *auth.Client, userRepo repositories.UserRepository, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			var user *models.User

			if claims, err := parseLocalJWT(tokenString, jwtSecret); err == nil {
				u, err := userRepo.GetUserByID(claims.UserID)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found")
				}
				user = u
			} else if authClient != nil {
				uid, err := verifyFirebaseToken(c.Request().Context(), authClient, tokenString)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
				}
				u, err := userRepo.GetUserByFirebaseUID(uid)
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not registered")
				}
				user = u
			} else {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the profile resolved by AuthMiddleware, or nil when the
// request was not authenticated.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(ContextUserKey).(*models.User)
	return user
}

// RequireModerator rejects callers whose role is neither teacher nor admin.
func RequireModerator() echo.MiddlewareFunc {
	return requireRoles(models.RoleTeacher, models.RoleAdmin)
}

// RequireAdmin rejects callers who are not admins.
func RequireAdmin() echo.MiddlewareFunc {
	return requireRoles(models.RoleAdmin)
}

func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication is required")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
		}
	}
}
