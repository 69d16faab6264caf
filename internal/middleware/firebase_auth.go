package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// verifyFirebaseToken checks an ID token against the Firebase project and
// returns the Firebase UID it belongs to.
func verifyFirebaseToken(ctx context.Context, authClient *auth.Client, idToken string) (string, error) {
	token, err := authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}
