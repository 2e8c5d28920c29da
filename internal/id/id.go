package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MinPrefix is the shortest prefix Resolve will accept.
const MinPrefix = 4

// New returns a fresh random transaction ID.
func New() string {
	return uuid.NewString()
}

// Short returns the first 8 characters of an ID, for table output.
// "3f0c2a9e-1b7d-4c55-9a0e-2d1f8b6c7e44" -> "3f0c2a9e"
func Short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Resolve finds the single ID in ids that equals or starts with prefix.
// An exact match always wins. It returns "" with no error when nothing matches.
func Resolve(prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty id")
	}

	var matches []string
	for _, candidate := range ids {
		if candidate == prefix {
			return candidate, nil
		}
		if strings.HasPrefix(candidate, prefix) {
			matches = append(matches, candidate)
		}
	}

	switch {
	case len(matches) == 0:
		return "", nil
	case len(prefix) < MinPrefix:
		return "", fmt.Errorf("id prefix %q is shorter than %d characters", prefix, MinPrefix)
	case len(matches) > 1:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
	return matches[0], nil
}
