package hass

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("home assistant access token has expired")

// CheckToken inspects a long-lived access token before dialing. Home
// Assistant issues them as JWTs; the signature cannot be verified here, only
// the expiry. Tokens that are not JWTs are accepted as-is.
func CheckToken(token string, now time.Time) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, nil
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	exp := claims.ExpiresAt.Time
	if !exp.After(now) {
		return exp, ErrTokenExpired
	}
	return exp, nil
}
