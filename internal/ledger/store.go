package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/budgetkit/budget/internal/id"
	"github.com/budgetkit/budget/internal/model"
)

// Clock supplies "today" for transactions appended without a date.
type Clock func() civil.Date

// SystemClock returns the current local date.
func SystemClock() civil.Date {
	return civil.DateOf(time.Now())
}

// Filter narrows List results. Zero-valued fields match everything; set
// fields are ANDed.
type Filter struct {
	Type     model.TransactionType
	Category string
	Date     civil.Date
}

// Match reports whether txn satisfies every set field of f.
func (f Filter) Match(txn model.Transaction) bool {
	if f.Type != "" && txn.Type != f.Type {
		return false
	}
	if f.Category != "" && txn.Category != f.Category {
		return false
	}
	if !f.Date.IsZero() && txn.Date != f.Date {
		return false
	}
	return true
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the date used for undated transactions.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDFunc overrides ID generation for transactions appended without one.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the sole owner of a transactions.csv file. Appends and removals
// are serialized; reads never observe a partially written row.
type Store struct {
	mu    sync.RWMutex
	path  string
	clock Clock
	newID func() string
	log   zerolog.Logger
}

// Open returns a Store backed by path, creating the parent directory and a
// header-only file when they do not exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:  path,
		clock: SystemClock,
		newID: id.New,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "ledger").Str("path", path).Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append assigns an ID and date when missing, then appends txn as a single
// row laid out like the file's header. The stored transaction is returned.
func (s *Store) Append(txn model.Transaction) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		return model.Transaction{}, err
	}

	var layout Layout
	if txn.ID == "" {
		txn.ID = s.newID()
		l, err := s.layoutLocked()
		if err != nil {
			return model.Transaction{}, err
		}
		layout = l
	} else {
		l, existing, err := s.readLocked()
		if err != nil {
			return model.Transaction{}, err
		}
		for _, rec := range existing {
			if rec.txn.ID == txn.ID {
				return model.Transaction{}, &InvalidRecordError{Field: "id", Value: txn.ID, Reason: "already exists"}
			}
		}
		layout = l
	}
	if txn.Date.IsZero() {
		txn.Date = s.clock()
	}
	if err := checkRecord(txn); err != nil {
		return model.Transaction{}, err
	}

	row, err := layout.EncodeRow(txn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("encoding transaction: %w", err)
	}
	if err := s.appendRow(row); err != nil {
		return model.Transaction{}, &StorageError{Op: "append", Path: s.path, Err: err}
	}

	s.log.Debug().
		Str("id", txn.ID).
		Str("type", string(txn.Type)).
		Str("category", txn.Category).
		Str("amount", txn.Amount.String()).
		Msg("appended transaction")
	return txn, nil
}

// List returns the transactions matching f in insertion order. It never
// returns nil on success.
func (s *Store) List(f Filter) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, recs, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	matched := make([]model.Transaction, 0, len(recs))
	for _, rec := range recs {
		if f.Match(rec.txn) {
			matched = append(matched, rec.txn)
		}
	}
	return matched, nil
}

// Remove deletes the transaction with the given ID. It reports false, with
// no error, when no such transaction exists. Other rows are written back
// exactly as they were read, extra columns included.
func (s *Store) Remove(txnID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, recs, err := s.readLocked()
	if err != nil {
		return false, err
	}

	kept := make([][]string, 0, len(recs))
	for _, rec := range recs {
		if rec.txn.ID != txnID {
			kept = append(kept, rec.fields)
		}
	}
	if len(kept) == len(recs) {
		s.log.Debug().Str("id", txnID).Msg("remove: no such transaction")
		return false, nil
	}

	if err := s.rewrite(layout.Header(), kept); err != nil {
		return false, &StorageError{Op: "rewrite", Path: s.path, Err: err}
	}
	s.log.Debug().Str("id", txnID).Int("remaining", len(kept)).Msg("removed transaction")
	return true, nil
}

// Clear deletes every transaction, keeping the file's header, and returns
// how many were removed.
func (s *Store) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, recs, err := s.readLocked()
	if err != nil {
		return 0, err
	}
	if err := s.rewrite(layout.Header(), nil); err != nil {
		return 0, &StorageError{Op: "rewrite", Path: s.path, Err: err}
	}
	s.log.Debug().Int("removed", len(recs)).Msg("cleared ledger")
	return len(recs), nil
}

// ensureFile creates the directory and a header-only ledger if needed, and
// repairs a zero-length file by writing the header. Callers hold mu.
func (s *Store) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}

	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return &StorageError{Op: "open", Path: s.path, Err: err}
	case info.IsDir():
		return &StorageError{Op: "open", Path: s.path, Err: errors.New("is a directory")}
	case info.Size() > 0:
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}
	if _, err := f.WriteString(Header + "\n"); err != nil {
		f.Close()
		return &StorageError{Op: "open", Path: s.path, Err: fmt.Errorf("writing header: %w", err)}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}
	s.log.Debug().Msg("created ledger file")
	return nil
}

// appendRow writes row in one call and syncs. When the file does not end in
// a newline one is written first, so the row never joins the last line. A
// failed or short write is truncated away so the file never ends in a
// partial row.
func (s *Store) appendRow(row []byte) error {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat ledger: %w", err)
	}

	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			f.Close()
			return fmt.Errorf("reading last byte: %w", err)
		}
		if last[0] != '\n' {
			row = append([]byte{'\n'}, row...)
		}
	}

	n, err := f.Write(row)
	if err == nil && n < len(row) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(row))
	}
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		if terr := f.Truncate(info.Size()); terr != nil {
			s.log.Error().Err(terr).Msg("truncating partial row failed")
		}
		f.Close()
		return fmt.Errorf("writing row: %w", err)
	}
	return f.Close()
}

// rewrite replaces the ledger with header and rows via a synced temp file
// and rename.
func (s *Store) rewrite(header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".transactions-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeRows(tmp, header, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// layoutLocked reads only the header of the ledger.
func (s *Store) layoutLocked() (Layout, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return Layout{}, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	layout, err := readLayout(f)
	if err != nil {
		return Layout{}, s.readError(err)
	}
	return layout, nil
}

// readLocked loads every row. A missing file reads as an empty ledger.
func (s *Store) readLocked() (Layout, []record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultLayout(), []record{}, nil
	}
	if err != nil {
		return Layout{}, nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	layout, recs, err := readLedger(f)
	if err != nil {
		return Layout{}, nil, s.readError(err)
	}
	return layout, recs, nil
}

func (s *Store) readError(err error) *StorageError {
	serr := &StorageError{Op: "read", Path: s.path, Err: err}
	var rerr *rowError
	if errors.As(err, &rerr) {
		serr.Row = rerr.row
		serr.Err = rerr.err
	}
	return serr
}
