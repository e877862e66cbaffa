package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims is the subset of backend-issued claims the client reads.
// The backend signs with a key the client never sees, so these are informational.
type AccessTokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
