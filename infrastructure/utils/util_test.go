package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameDay_DistinctLocationsSameInstant(t *testing.T) {
	// The same instant seen through different locations must still count
	// as one day; == on truncated time.Time values would say otherwise
	// because it compares location pointers.
	utc := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("X", 0))

	assert.False(t, Midnight(utc) == Midnight(shifted))
	assert.True(t, SameDay(utc, shifted))
}

func TestSameDay_EventFromOtherZone(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	day := Midnight(GetCurrentTime())
	event := GetCurrentTime().In(tokyo)

	assert.True(t, SameDay(event, day))
}

func TestSameDay_UsesUTCBoundary(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	// 2025-03-13 05:00 in Tokyo is still 2025-03-12 in UTC.
	event := time.Date(2025, time.March, 13, 5, 0, 0, 0, tokyo)
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(event, day))
	assert.False(t, SameDay(event, day.AddDate(0, 0, 1)))
}

func TestDayKey_NormalizesToUTC(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*3600)
	local := time.Date(2025, time.March, 13, 5, 0, 0, 0, tokyo)

	assert.Equal(t, "2025-03-12", DayKey(local))
	assert.Equal(t, DayKey(local), DayKey(local.UTC()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abcd", 2))
	assert.Equal(t, "abcd", Truncate("abcd", 0))
}
