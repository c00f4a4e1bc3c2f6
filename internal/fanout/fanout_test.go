package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		failFor    map[string]bool
		wantOK     int
		wantFailed []string
	}{
		{
			name:       "all succeed",
			recipients: []string{"a", "b", "c"},
			wantOK:     3,
		},
		{
			name:       "partial failure settles the rest",
			recipients: []string{"a", "b", "c", "d"},
			failFor:    map[string]bool{"b": true, "d": true},
			wantOK:     2,
			wantFailed: []string{"b", "d"},
		},
		{
			name:       "no recipients",
			recipients: nil,
			wantOK:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			create := func(ctx context.Context, recipient string) (string, error) {
				if tt.failFor[recipient] {
					return "", errors.New("write rejected")
				}
				return "id-" + recipient, nil
			}

			result := Broadcast(context.Background(), tt.recipients, create, 2)

			require.Len(t, result, len(tt.recipients))
			assert.Equal(t, tt.wantOK, result.Succeeded())

			var failed []string
			for _, o := range result.Failed() {
				failed = append(failed, o.Recipient)
			}
			assert.Equal(t, tt.wantFailed, failed)

			for i, o := range result {
				assert.Equal(t, tt.recipients[i], o.Recipient)
				if o.Err == nil {
					assert.Equal(t, "id-"+o.Recipient, o.ID)
				}
			}
		})
	}
}

func TestBroadcastRespectsLimit(t *testing.T) {
	var running, peak atomic.Int32
	recipients := make([]string, 20)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("m%d", i)
	}

	create := func(ctx context.Context, recipient string) (string, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return recipient, nil
	}

	result := Broadcast(context.Background(), recipients, create, 3)
	assert.Equal(t, 20, result.Succeeded())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
