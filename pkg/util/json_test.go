package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRawResponse struct {
	raw string
}

func (f fakeRawResponse) RawJSON() string { return f.raw }

func TestPrintPrettyJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"object", `{"session_id":"abc123","state":"ready"}`, false},
		{"empty response", "", false},
		{"invalid json", `{"broken`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PrintPrettyJSON(fakeRawResponse{raw: tt.raw})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	assert.NoError(t, PrintJSON(map[string]string{"session_id": "abc123"}))
	assert.Error(t, PrintJSON(func() {}))
}
