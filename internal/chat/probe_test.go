package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbeCheckMapsHostResults(t *testing.T) {
	tests := []struct {
		name     string
		state    Readiness
		err      error
		expected Readiness
	}{
		{"ready", ReadinessReady, nil, ReadinessReady},
		{"not ready", ReadinessNotReady, nil, ReadinessNotReady},
		{"unknown", ReadinessUnknown, nil, ReadinessUnknown},
		{"host error", ReadinessReady, errors.New("page gone"), ReadinessUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			host.CheckReadinessFunc = func(ctx context.Context, h SessionHandle) (Readiness, error) {
				return tt.state, tt.err
			}
			p := NewReadinessProbe(host)
			assert.Equal(t, tt.expected, p.Check(context.Background(), SessionHandle{ID: "s1"}))
		})
	}
}

func TestProbeStableRequiresEveryCheckReady(t *testing.T) {
	host := newFakeHost()
	results := []Readiness{ReadinessReady, ReadinessReady, ReadinessNotReady}
	host.CheckReadinessFunc = func(ctx context.Context, h SessionHandle) (Readiness, error) {
		st := results[0]
		if len(results) > 1 {
			results = results[1:]
		}
		return st, nil
	}
	p := NewReadinessProbe(host)

	assert.False(t, p.Stable(context.Background(), SessionHandle{ID: "s1"}, 3, time.Millisecond))
}

func TestProbeStableAllReady(t *testing.T) {
	host := newFakeHost()
	p := NewReadinessProbe(host)

	assert.True(t, p.Stable(context.Background(), SessionHandle{ID: "s1"}, 3, time.Millisecond))
}
