package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/budgetkit/budget/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,type,category,amount,description"

const (
	numFields  = 6
	colID      = 0
	colDate    = 1
	colType    = 2
	colCat     = 3
	colAmount  = 4
	colDesc    = 5
	amountDecs = 2
)

var columns = strings.Split(Header, ",")

// rowError tags a decode failure with its 1-based CSV line.
type rowError struct {
	row int
	err error
}

func (e *rowError) Error() string { return fmt.Sprintf("row %d: %v", e.row, e.err) }
func (e *rowError) Unwrap() error { return e.err }

// Layout is the column arrangement of a ledger file, taken from its header.
// Files may order the known columns freely and carry extra ones.
type Layout struct {
	header []string
	index  map[int]int // known column -> position in the file
}

// DefaultLayout is the layout of files the ledger creates.
func DefaultLayout() Layout {
	index := make(map[int]int, numFields)
	for col := range columns {
		index[col] = col
	}
	return Layout{header: columns, index: index}
}

// ParseLayout locates the known columns in header by name, ignoring case and
// a leading byte order mark.
func ParseLayout(header []string) (Layout, error) {
	index, err := headerIndex(header)
	if err != nil {
		return Layout{}, err
	}
	return Layout{header: append([]string(nil), header...), index: index}, nil
}

// Header returns the header row as stored in the file.
func (l Layout) Header() []string {
	return l.header
}

// Fields places txn's values at their positions in the file. Columns the
// ledger does not know about are left empty.
func (l Layout) Fields(txn model.Transaction) []string {
	known := MarshalTransaction(txn)
	row := make([]string, len(l.header))
	for col, pos := range l.index {
		row[pos] = known[col]
	}
	return row
}

// EncodeRow returns the CSV encoding of txn in this layout, terminated by a
// newline, ready to be appended in one write.
func (l Layout) EncodeRow(txn model.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(l.Fields(txn)); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l Layout) decode(rec []string) (model.Transaction, error) {
	row := make([]string, numFields)
	for col, pos := range l.index {
		row[col] = rec[pos]
	}
	return UnmarshalTransaction(row)
}

// record is a decoded row along with its fields exactly as stored, so a
// rewrite keeps columns the ledger does not know about.
type record struct {
	txn    model.Transaction
	fields []string
}

// ReadTransactions reads all transactions from a transactions.csv reader.
// Columns are located by header name, case-insensitively, so files with
// extra columns or a capitalized header still load.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	_, recs, err := readLedger(r)
	if err != nil {
		return nil, err
	}
	txns := make([]model.Transaction, len(recs))
	for i, rec := range recs {
		txns[i] = rec.txn
	}
	return txns, nil
}

// readLayout reads only the header. An empty input has the default layout.
func readLayout(r io.Reader) (Layout, error) {
	header, err := csv.NewReader(r).Read()
	if errors.Is(err, io.EOF) {
		return DefaultLayout(), nil
	}
	if err != nil {
		return Layout{}, &rowError{row: 1, err: err}
	}
	layout, err := ParseLayout(header)
	if err != nil {
		return Layout{}, &rowError{row: 1, err: err}
	}
	return layout, nil
}

func readLedger(r io.Reader) (Layout, []record, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return DefaultLayout(), []record{}, nil
	}
	if err != nil {
		return Layout{}, nil, fmt.Errorf("reading header: %w", err)
	}

	layout, err := ParseLayout(header)
	if err != nil {
		return Layout{}, nil, &rowError{row: 1, err: err}
	}

	recs := []record{}
	seen := make(map[string]int)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return Layout{}, nil, &rowError{row: perr.StartLine, err: perr.Err}
			}
			return Layout{}, nil, fmt.Errorf("reading row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		txn, err := layout.decode(fields)
		if err != nil {
			return Layout{}, nil, &rowError{row: line, err: err}
		}
		if prev, dup := seen[txn.ID]; dup {
			return Layout{}, nil, &rowError{row: line, err: &InvalidRecordError{
				Field:  "id",
				Value:  txn.ID,
				Reason: fmt.Sprintf("duplicates row %d", prev),
			}}
		}
		seen[txn.ID] = line
		recs = append(recs, record{txn: txn, fields: fields})
	}
	return layout, recs, nil
}

// WriteTransactions writes a full transactions.csv (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	rows := make([][]string, len(txns))
	for i, txn := range txns {
		rows[i] = MarshalTransaction(txn)
	}
	return writeRows(w, columns, rows)
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.String()
	row[colType] = string(txn.Type)
	row[colCat] = txn.Category
	row[colAmount] = FormatAmount(txn.Amount)
	row[colDesc] = txn.Description
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction and checks it
// against the ledger invariants.
func UnmarshalTransaction(fields []string) (model.Transaction, error) {
	if len(fields) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(fields))
	}

	date, err := civil.ParseDate(fields[colDate])
	if err != nil {
		return model.Transaction{}, &InvalidRecordError{Field: "date", Value: fields[colDate], Reason: "want YYYY-MM-DD"}
	}

	amount, err := decimal.NewFromString(fields[colAmount])
	if err != nil {
		return model.Transaction{}, &InvalidRecordError{Field: "amount", Value: fields[colAmount], Reason: "not a decimal number"}
	}

	txn := model.Transaction{
		ID:          fields[colID],
		Date:        date,
		Type:        model.TransactionType(fields[colType]),
		Category:    fields[colCat],
		Amount:      amount,
		Description: fields[colDesc],
	}
	if err := checkRecord(txn); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// FormatAmount renders an amount with two decimals, or more when the value
// carries more precision.
// 127.5 -> "127.50", 3500 -> "3500.00", 0.125 -> "0.125"
func FormatAmount(d decimal.Decimal) string {
	if d.Exponent() >= -amountDecs {
		return d.StringFixed(amountDecs)
	}
	return d.String()
}

func headerIndex(header []string) (map[int]int, error) {
	index := make(map[int]int, numFields)
	for src, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		for col, want := range columns {
			if name == want {
				if _, dup := index[col]; dup {
					return nil, fmt.Errorf("duplicate column %q", want)
				}
				index[col] = src
			}
		}
	}
	var missing []string
	for col, want := range columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// checkRecord enforces what the store guarantees about every persisted row.
func checkRecord(txn model.Transaction) error {
	if strings.TrimSpace(txn.ID) == "" {
		return &InvalidRecordError{Field: "id", Reason: "must not be empty"}
	}
	if !txn.Date.IsValid() {
		return &InvalidRecordError{Field: "date", Value: txn.Date.String(), Reason: "not a calendar date"}
	}
	if !txn.Type.Valid() {
		return &InvalidRecordError{Field: "type", Value: string(txn.Type), Reason: "must be Income or Expense"}
	}
	if strings.TrimSpace(txn.Category) == "" {
		return &InvalidRecordError{Field: "category", Reason: "must not be empty"}
	}
	if !txn.Amount.IsPositive() {
		return &InvalidRecordError{Field: "amount", Value: txn.Amount.String(), Reason: "must be greater than zero"}
	}
	return nil
}
