package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindow(t *testing.T) {
	from, to := monthWindow(2025, 1)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), to)

	// December rolls into the next year.
	from, to = monthWindow(2025, 12)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC) // a Wednesday

	from, to := periodWindow("weekly", 2025, 6, now)
	assert.Equal(t, time.Sunday, from.Weekday())
	assert.Equal(t, from.AddDate(0, 0, 7), to)

	from, to = periodWindow("yearly", 2025, 6, now)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)

	from, to = periodWindow("monthly", 2025, 6, now)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestClampMonth(t *testing.T) {
	assert.Equal(t, 1, clampMonth(-3))
	assert.Equal(t, 7, clampMonth(7))
	assert.Equal(t, 12, clampMonth(99))
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("2025-01-05")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = parseDate("2025-01-05T10:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 10, parsed.Hour())

	_, err = parseDate("05/01/2025")
	assert.Error(t, err)

	// Empty input stamps with the current time.
	parsed, err = parseDate("")
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}
