package progress

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrlokans/birdlearner/internal/dataset"
	"github.com/mrlokans/birdlearner/internal/entities"
)

// Table is a user's copy of the master table with familiar flags.
type Table struct {
	Username string
	Columns  []string // master columns without "familiar"; nil when the backend does not track them
	Birds    []entities.Bird
}

// NewTable copies the master table for username with every flag cleared.
func NewTable(username string, master *entities.MasterTable) *Table {
	return &Table{
		Username: username,
		Columns:  append([]string(nil), master.Columns...),
		Birds:    master.CloneBirds(),
	}
}

// Len returns the number of birds.
func (t *Table) Len() int {
	return len(t.Birds)
}

// FamiliarCount returns how many birds are marked familiar.
func (t *Table) FamiliarCount() int {
	n := 0
	for _, b := range t.Birds {
		if b.Familiar {
			n++
		}
	}
	return n
}

// Fraction returns FamiliarCount / Len, or 0 for an empty table.
func (t *Table) Fraction() float64 {
	if len(t.Birds) == 0 {
		return 0
	}
	return float64(t.FamiliarCount()) / float64(len(t.Birds))
}

// IndexOf returns the row of the bird with the given English name, or -1.
func (t *Table) IndexOf(english string) int {
	for i, b := range t.Birds {
		if b.English == english {
			return i
		}
	}
	return -1
}

// master returns the table's rows and columns as a master table, flags cleared.
func (t *Table) master() *entities.MasterTable {
	return &entities.MasterTable{Columns: t.Columns, Birds: t.Birds}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Username: t.Username,
		Birds:    make([]entities.Bird, len(t.Birds)),
	}
	if t.Columns != nil {
		c.Columns = append([]string{}, t.Columns...)
	}
	for i, b := range t.Birds {
		c.Birds[i] = b.Clone()
	}
	return c
}

func (t *Table) csvColumns() []string {
	if len(t.Columns) == 0 {
		return []string{entities.ColumnEnglish, entities.ColumnAfrikaans}
	}
	return t.Columns
}

// WriteCSV writes the table with a trailing familiar column (True/False).
// Identical tables produce identical bytes.
func (t *Table) WriteCSV(w io.Writer) error {
	columns := t.csvColumns()
	cw := csv.NewWriter(w)

	header := append(append([]string{}, columns...), entities.ColumnFamiliar)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, b := range t.Birds {
		for i, c := range columns {
			record[i] = b.Value(c)
		}
		record[len(columns)] = formatBool(b.Familiar)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTableCSV parses a table written by WriteCSV. A missing familiar column
// leaves every flag false.
func ReadTableCSV(r io.Reader) (*Table, error) {
	header, rows, err := dataset.ReadCSV(r)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	var columns []string
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		if name != entities.ColumnFamiliar {
			columns = append(columns, name)
		}
	}
	englishIdx, ok := index[entities.ColumnEnglish]
	if !ok {
		return nil, fmt.Errorf("missing required column: %s", entities.ColumnEnglish)
	}
	familiarIdx, hasFamiliar := index[entities.ColumnFamiliar]

	t := &Table{Columns: columns, Birds: make([]entities.Bird, 0, len(rows))}
	for n, record := range rows {
		b := entities.Bird{English: cell(record, englishIdx)}
		if idx, ok := index[entities.ColumnAfrikaans]; ok {
			b.Afrikaans = cell(record, idx)
		}
		for _, c := range columns {
			if c == entities.ColumnEnglish || c == entities.ColumnAfrikaans {
				continue
			}
			if b.Extra == nil {
				b.Extra = make(map[string]string)
			}
			b.Extra[c] = cell(record, index[c])
		}
		if hasFamiliar {
			if raw := cell(record, familiarIdx); raw != "" {
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid familiar value %q", n+2, raw)
				}
				b.Familiar = v
			}
		}
		t.Birds = append(t.Birds, b)
	}
	return t, nil
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
