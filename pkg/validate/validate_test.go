package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type request struct {
	Username string `validate:"required,min=3,max=10"`
	Action   string `validate:"required,oneof=add subtract"`
	Amount   int64  `validate:"min=1"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name     string
		req      request
		expected string
	}{
		{
			name: "Valid request",
			req:  request{Username: "alice", Action: "add", Amount: 5},
		},
		{
			name:     "Missing username",
			req:      request{Action: "add", Amount: 5},
			expected: "username is required",
		},
		{
			name:     "Unknown action and zero amount",
			req:      request{Username: "alice", Action: "steal", Amount: 0},
			expected: "action must be one of [add subtract]; amount must be at least 1",
		},
		{
			name:     "Too long username",
			req:      request{Username: "averyveryverylongname", Action: "add", Amount: 1},
			expected: "username must be at most 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.expected == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expected)
		})
	}
}
