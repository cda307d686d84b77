package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime decides how long a freshly issued access token lives. The
// server's expires_in wins; when it is absent the exp claim of the token
// itself is used (unverified — the value only schedules a refresh, it grants
// nothing). Returns 0 when no lifetime can be determined.
func tokenLifetime(accessToken string, expiresIn int, now time.Time) int {
	if expiresIn > 0 {
		return expiresIn
	}
	return remainingLifetime(accessToken, now)
}

// remainingLifetime reads the exp claim of a JWT access token and returns
// the seconds left until it, or 0 for non-JWT tokens, missing claims, or
// already-expired tokens.
func remainingLifetime(accessToken string, now time.Time) int {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	seconds := int(exp.Time.Sub(now).Seconds())
	if seconds <= 0 {
		return 0
	}
	return seconds
}
