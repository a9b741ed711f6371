// Package dataset loads the master bird table.
//
// The table is read once per Loader and cached; every later Load returns the
// same in-memory table. The master table must never be mutated by callers.
//
// # Supported formats
//
//   - .csv  read with encoding/csv, first row is the header
//   - .xlsx read with excelize, first sheet unless a sheet name is configured
//
// Header names and cells are trimmed and NFC-normalised so that names typed
// on different systems compare equal.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/mrlokans/birdlearner/internal/entities"
)

// ErrDataUnavailable is returned when the master dataset cannot be read.
var ErrDataUnavailable = errors.New("bird dataset unavailable")

// Loader reads and caches the master table.
type Loader struct {
	path   string
	sheet  string
	logger *zap.Logger

	mu    sync.Mutex
	table *entities.MasterTable
}

// NewLoader creates a loader for the dataset at path. sheet is only used for XLSX files.
func NewLoader(path, sheet string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, sheet: sheet, logger: logger}
}

// Path returns the dataset file path.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the cached master table, reading it on first use.
// Failed reads are not cached so a fixed file is picked up on the next call.
func (l *Loader) Load() (*entities.MasterTable, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.table != nil {
		return l.table, nil
	}

	header, rows, err := l.readRows()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, l.path, err)
	}

	table, skipped, err := BuildTable(header, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, l.path, err)
	}
	for _, msg := range skipped {
		l.logger.Warn("dataset row skipped", zap.String("path", l.path), zap.String("reason", msg))
	}

	l.logger.Info("bird dataset loaded",
		zap.String("path", l.path),
		zap.Int("birds", table.Len()),
		zap.Strings("columns", table.Columns))

	l.table = table
	return table, nil
}

func (l *Loader) readRows() ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(l.path, l.sheet)
	default:
		f, err := os.Open(l.path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	}
}

// ReadCSV reads a header row and all data rows from r.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

func readXLSX(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return rows[0], rows[1:], nil
}

// BuildTable turns raw header and rows into a master table. Rows without an
// English name and repeated English names are skipped and reported.
func BuildTable(header []string, rows [][]string) (*entities.MasterTable, []string, error) {
	columns := make([]string, 0, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := cleanCell(h)
		if i == 0 {
			name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		}
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		columns = append(columns, name)
	}

	for _, required := range []string{entities.ColumnEnglish, entities.ColumnAfrikaans} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	// The familiar flag is per user; a master file never carries one.
	passthrough := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != entities.ColumnEnglish && c != entities.ColumnAfrikaans && c != entities.ColumnFamiliar {
			passthrough = append(passthrough, c)
		}
	}

	table := &entities.MasterTable{Birds: make([]entities.Bird, 0, len(rows))}
	for _, c := range columns {
		if c != entities.ColumnFamiliar {
			table.Columns = append(table.Columns, c)
		}
	}

	var skipped []string
	seen := make(map[string]int, len(rows))
	for i, record := range rows {
		line := i + 2
		bird := entities.Bird{
			English:   cellAt(record, index[entities.ColumnEnglish]),
			Afrikaans: cellAt(record, index[entities.ColumnAfrikaans]),
		}
		if bird.English == "" {
			if !isBlank(record) {
				skipped = append(skipped, fmt.Sprintf("line %d: missing English name", line))
			}
			continue
		}
		if first, dup := seen[bird.English]; dup {
			skipped = append(skipped, fmt.Sprintf("line %d: duplicate of line %d (%s)", line, first, bird.English))
			continue
		}
		seen[bird.English] = line

		if len(passthrough) > 0 {
			bird.Extra = make(map[string]string, len(passthrough))
			for _, c := range passthrough {
				bird.Extra[c] = cellAt(record, index[c])
			}
		}
		table.Birds = append(table.Birds, bird)
	}

	return table, skipped, nil
}

func cellAt(record []string, idx int) string {
	if idx < len(record) {
		return cleanCell(record[idx])
	}
	return ""
}

func cleanCell(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
