package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/calcshell/internal/calc"
)

// Header is the column layout of the backing file.
var Header = []string{"operation", "a", "b", "result"}

// readFile reads records from path.
// A missing file yields no records and no error. skipped counts rows that
// were dropped because they could not be parsed or failed validation.
func readFile(path string) (records []Record, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer f.Close()

	return decode(f)
}

// decode parses CSV data with a leading header row.
func decode(r io.Reader) (records []Record, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	if !headerMatches(header) {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadHeader, strings.Join(header, ","))
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				skipped++
				continue
			}
			return records, skipped, err
		}

		rec, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(col), Header[i]) {
			return false
		}
	}
	return true
}

func parseRow(row []string) (Record, bool) {
	if len(row) != len(Header) {
		return Record{}, false
	}

	rec := Record{Operation: strings.TrimSpace(row[0]), B: NoOperand}

	var err error
	if rec.A, err = calc.ParseReal(row[1]); err != nil {
		return Record{}, false
	}
	if strings.TrimSpace(row[2]) != "" {
		if rec.B, err = calc.ParseReal(row[2]); err != nil {
			return Record{}, false
		}
	}
	if rec.Result, err = calc.ParseReal(row[3]); err != nil {
		return Record{}, false
	}

	return rec, rec.Valid()
}

// encode writes records as CSV with a header row.
func encode(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFile replaces path with the encoded records.
// Data is written to a temp file in the same directory and renamed into place.
func writeFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := encode(f, records); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
