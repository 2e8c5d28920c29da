package ledger

import (
	"fmt"
	"strings"
)

// StorageError reports that the ledger file could not be read or written,
// including rows that do not parse.
type StorageError struct {
	Op   string // "open", "read", "append", "rewrite"
	Path string
	Row  int // 1-based CSV line, 0 when not row-specific
	Err  error
}

func (e *StorageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ledger %s %s", e.Op, e.Path)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StorageError) Unwrap() error { return e.Err }

// InvalidRecordError describes a transaction the store refuses to persist,
// or a stored row that violates the ledger invariants.
type InvalidRecordError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
