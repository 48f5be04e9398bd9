package procedures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RoutingTable(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		path         string
		query        bool
		requiresAuth bool
	}{
		{"todo.getAll", true, false},
		{"todo.create", false, false},
		{"todo.toggle", false, false},
		{"todo.delete", false, false},
		{"privateData", true, true},
	}
	for _, tt := range tests {
		proc, ok := r.Lookup(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.query, proc.Query, tt.path)
		assert.Equal(t, tt.requiresAuth, proc.RequiresAuth, tt.path)
	}

	assert.Len(t, r.Paths(), len(tests))
}
