package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the token is not a JWT.
var ErrOpaqueToken = errors.New("token is not a jwt")

// InspectAccessToken decodes the claims of a backend token without verifying
// its signature. Validity is only established by the backend.
func InspectAccessToken(tokenString string) (*AccessTokenClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}
	claims := &AccessTokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaqueToken
		}
		return nil, err
	}
	return claims, nil
}

// UserID returns the subject claim parsed as a numeric user id.
func (c *AccessTokenClaims) UserID() (int64, bool) {
	if c == nil || c.Subject == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ExpiresAt reports the token expiry when the token carries one.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims, err := InspectAccessToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// LooksExpired reports whether the token's exp claim is before now. Opaque
// tokens and tokens without exp never look expired.
func LooksExpired(tokenString string, now time.Time) bool {
	exp, ok := ExpiresAt(tokenString)
	return ok && !now.Before(exp)
}
