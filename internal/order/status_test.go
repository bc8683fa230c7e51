package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"given pending to processing should be allowed", StatusPending, StatusProcessing, true},
		{"given pending to canceled should be allowed", StatusPending, StatusCanceled, true},
		{"given pending to delivered should be rejected", StatusPending, StatusDelivered, false},
		{"given pending to returned should be rejected", StatusPending, StatusReturned, false},
		{"given processing to delivered should be allowed", StatusProcessing, StatusDelivered, true},
		{"given processing to returned should be allowed", StatusProcessing, StatusReturned, true},
		{"given processing to canceled should be allowed", StatusProcessing, StatusCanceled, true},
		{"given processing to pending should be rejected", StatusProcessing, StatusPending, false},
		{"given delivered to canceled should be rejected", StatusDelivered, StatusCanceled, false},
		{"given returned to processing should be rejected", StatusReturned, StatusProcessing, false},
		{"given canceled to pending should be rejected", StatusCanceled, StatusPending, false},
		{"given status to itself should be rejected", StatusPending, StatusPending, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, CanTransition(test.from, test.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"given pending should not be terminal", StatusPending, false},
		{"given processing should not be terminal", StatusProcessing, false},
		{"given delivered should be terminal", StatusDelivered, true},
		{"given returned should be terminal", StatusReturned, true},
		{"given canceled should be terminal", StatusCanceled, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.status.Terminal())
		})
	}
}
