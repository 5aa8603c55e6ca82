package utils

import (
	"time"

	"github.com/golang-jwt/jwt"

	"dev-pulse/infrastructure/logger"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// Midnight truncates t to its local calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey formats t as the YYYY-MM-DD key used by recalc jobs and the
// raw payload archive. Always the UTC calendar day, so producers and
// consumers agree regardless of host zone.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SameDay reports whether a and b fall on the same UTC calendar day.
// Never compare truncated time.Time values with == here: that also
// compares the location pointer, not just the instant.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Truncate bounds free-form error text before it lands in connection
// metadata. Internal detail never reaches end users verbatim.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

func GenerateToken(payload map[string]interface{}, secretKey string) (string, error) {
	var claims jwt.MapClaims = payload
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
