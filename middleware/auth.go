package middleware

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Socketio_JWT_decoder verifies the bearer token a socket.io client sends
// in its handshake auth data and returns the email claim. This is the
// whole token-service contract the live layer consumes: verify(token) ->
// identity or invalid.
func Socketio_JWT_decoder(authData map[string]interface{}) (string, error) {
	raw, exists := authData["authorization"].(string)
	if !exists {
		return "", errors.New("missing authorization token")
	}
	return decodeBearer(raw)
}

func decodeBearer(raw string) (string, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(os.Getenv("KEY")), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid JWT: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid JWT claims")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", errors.New("JWT is missing the email claim")
	}
	return email, nil
}
