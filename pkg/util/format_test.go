package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "value", OrDash("value"))
}

func TestFirstOrDash(t *testing.T) {
	assert.Equal(t, "-", FirstOrDash())
	assert.Equal(t, "-", FirstOrDash("", ""))
	assert.Equal(t, "b", FirstOrDash("", "b", "c"))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		opened   time.Time
		expected string
	}{
		{"zero time", time.Time{}, "-"},
		{"seconds", now.Add(-45 * time.Second), "45s"},
		{"minutes", now.Add(-12 * time.Minute), "12m"},
		{"hours", now.Add(-3 * time.Hour), "3h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAge(tt.opened, now))
		})
	}
}
