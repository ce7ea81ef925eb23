package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewport(t *testing.T) {
	tests := []struct {
		in     string
		width  int64
		height int64
		ok     bool
	}{
		{"1440x900", 1440, 900, true},
		{"1920x1080", 1920, 1080, true},
		{"1440", 0, 0, false},
		{"0x900", 0, 0, false},
		{"widexhigh", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			width, height, err := parseViewport(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.width, width)
			assert.Equal(t, tt.height, height)
		})
	}
}
