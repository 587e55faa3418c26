// Package dataset stores labelled scans as CSV rows of the form
// label,sample_num,w1..w8.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/multierr"

	"github.com/yunginnanet/nirscan/pkg/scan"
)

var ErrMalformed = errors.New("malformed dataset row")

// Row is one labelled scan.
type Row struct {
	Label  string
	Sample string
	Values scan.Result
}

// Header returns the column names.
func Header() []string {
	var res scan.Result
	h := make([]string, 0, 2+len(res))
	h = append(h, "label", "sample_num")
	for i := range res {
		h = append(h, "w"+strconv.Itoa(i+1))
	}
	return h
}

// Record returns the row as CSV fields.
func (r Row) Record() []string {
	rec := make([]string, 0, 2+len(r.Values))
	rec = append(rec, r.Label, r.Sample)
	for _, v := range r.Values {
		rec = append(rec, strconv.FormatInt(int64(v), 10))
	}
	return rec
}

// Append adds rows to the CSV file at path, creating it if needed. The header
// is written only when the file is new or empty.
func Append(path string, rows ...Row) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dataset: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err = w.Write(Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range rows {
		if err = w.Write(r.Record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Read parses a dataset written by Append.
func Read(rd io.Reader) ([]Row, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(Header())

	var rows []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if line == 1 && rec[0] == "label" {
			continue
		}
		r := Row{Label: rec[0], Sample: rec[1]}
		for i, field := range rec[2:] {
			v, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d w%d: %w", ErrMalformed, line, i+1, err)
			}
			r.Values[i] = int32(v)
		}
		rows = append(rows, r)
	}
}

// ReadFile is Read on the file at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
