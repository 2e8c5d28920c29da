package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got := New()
		_, err := uuid.Parse(got)
		require.NoError(t, err, "New() should return a UUID, got %q", got)
		assert.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3f0c2a9e-1b7d-4c55-9a0e-2d1f8b6c7e44", "3f0c2a9e"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Short(tt.input))
	}
}

func TestResolve(t *testing.T) {
	ids := []string{
		"3f0c2a9e-1b7d-4c55-9a0e-2d1f8b6c7e44",
		"3f0c9999-0000-4000-8000-000000000000",
		"a1b2c3d4-0000-4000-8000-000000000000",
		"abc",
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"3f0c2a9e-1b7d-4c55-9a0e-2d1f8b6c7e44", ids[0], false},
		{"3f0c2a", ids[0], false},
		{"a1b2", ids[2], false},
		{"abc", "abc", false},
		{"3f0c", "", true},
		{"a1", "", true},
		{"ffff", "", false},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.prefix, ids)
		if tt.wantErr {
			assert.Error(t, err, "Resolve(%q)", tt.prefix)
			continue
		}
		require.NoError(t, err, "Resolve(%q)", tt.prefix)
		assert.Equal(t, tt.want, got, "Resolve(%q)", tt.prefix)
	}
}
