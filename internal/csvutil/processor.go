// Package csvutil reads header-driven CSV files into typed rows.
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Row gives access to one CSV record by header name.
type Row struct {
	Line   int
	fields []string
	index  map[string]int
}

// Get returns the trimmed value of column name, or "" when the column is absent.
func (r Row) Get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// Required lists header names that must be present.
	Required []string

	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// ProcessFile opens filename and hands it to Process.
func ProcessFile[T any](filename string, parser func(Row) (T, error), opts ProcessorOptions) ([]T, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Process(f, parser, opts)
}

// Process reads a header line and parses each following record into T.
func Process[T any](r io.Reader, parser func(Row) (T, error), opts ProcessorOptions) ([]T, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range opts.Required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var items []T
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Error reading CSV record", "line", line, "error", err)
			continue
		}

		item, err := parser(Row{Line: line, fields: fields, index: index})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid CSV record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}
