// Package tabular reads the festival sheet from CSV, TSV or XLSX files into
// domain rows.
package tabular

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/festival-map/internal/domain"
)

var (
	ErrInputNotFound     = errors.New("input file not found")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyInput        = errors.New("input has no header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader loads every data row of one input file.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for path. The format is chosen by extension:
// .csv, .tsv, .xlsx or .xlsm.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Path returns the input file path.
func (r *Reader) Path() string { return r.path }

// Extract reads the file and maps its columns onto domain rows. Blank rows
// are skipped and do not advance the line counter.
func (r *Reader) Extract(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read input %q: %w", r.path, ErrInputNotFound)
		}
		return nil, fmt.Errorf("read input %q: %w", r.path, err)
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(r.path)); ext {
	case ".csv":
		records, err = readDelimited(r.path, ',')
	case ".tsv":
		records, err = readDelimited(r.path, '\t')
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r.path)
	default:
		return nil, fmt.Errorf("read input %q: %w: %q", r.path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read input %q: %w", r.path, err)
	}

	rows, err := r.mapRows(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("read input %q: %w", r.path, err)
	}
	r.logger.Info("input read", "path", r.path, "rows", len(rows))
	return rows, nil
}

func (r *Reader) mapRows(ctx context.Context, records [][]string) ([]domain.RawRow, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyInput
	}

	cols, matched, positional := resolveColumns(records[start])
	if matched == 0 {
		r.logger.Warn("no known headers found, using positional columns", "header", records[start])
	} else if len(positional) > 0 {
		r.logger.Warn("unrecognized headers, using positional columns", "columns", positional, "header", records[start])
	}
	if missing := cols.missing(); len(missing) > 0 {
		r.logger.Warn("input is missing columns", "columns", missing)
	}

	rows := make([]domain.RawRow, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		rows = append(rows, cols.row(len(rows)+1, rec))
	}
	return rows, nil
}

func readDelimited(path string, delim rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readWorkbook returns the rows of the first sheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
