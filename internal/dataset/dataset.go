// Package dataset reads numeric observation matrices from CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Options controls how CSV input is interpreted.
type Options struct {
	// Header skips the first record.
	Header bool
	// Columns selects the zero-based columns to keep. Empty keeps all.
	Columns []int
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// ParseColumns parses a comma-separated list of zero-based column indices
// such as "0,1,3". An empty string selects every column.
func ParseColumns(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	cols := make([]int, len(parts))
	for i, p := range parts {
		c, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || c < 0 {
			return nil, fmt.Errorf("invalid column %q: want a non-negative integer", p)
		}
		cols[i] = c
	}
	return cols, nil
}

// ParseDelimiter parses a field delimiter given on the command line. It must
// be a single character; "tab" and `\t` name the tab character. An empty
// string means ','.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: want a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// Load reads every record of r as one observation.
func Load(r io.Reader, opts Options) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	var data [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if line == 1 && opts.Header {
			continue
		}

		fields := record
		if len(opts.Columns) > 0 {
			fields = make([]string, len(opts.Columns))
			for i, c := range opts.Columns {
				if c >= len(record) {
					return nil, fmt.Errorf("line %d: column %d out of range (%d fields)", line, c, len(record))
				}
				fields[i] = record[c]
			}
		}

		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: unable to parse value %q as float: %w", line, f, err)
			}
			row[i] = v
		}
		if len(data) > 0 && len(row) != len(data[0]) {
			return nil, fmt.Errorf("line %d: got %d values, want %d", line, len(row), len(data[0]))
		}
		data = append(data, row)
	}

	if len(data) == 0 {
		return nil, errors.New("no observations found")
	}
	return data, nil
}

// LoadFile opens path and reads it with Load. A path of "-" reads stdin.
func LoadFile(path string, opts Options) ([][]float64, error) {
	if path == "-" {
		return Load(os.Stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close()

	data, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
