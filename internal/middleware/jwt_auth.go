package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

// parseLocalJWT validates a locally issued session token and returns its
// claims. The secret comes from the loaded configuration so verification and
// signing can never drift apart.
func parseLocalJWT(tokenString, jwtSecret string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
