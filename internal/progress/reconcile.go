package progress

import (
	"slices"

	"github.com/mrlokans/birdlearner/internal/entities"
)

// Reconciliation describes how a persisted table differed from the master table.
type Reconciliation struct {
	Added          []string // in the master table, not persisted
	Dropped        []string // persisted, no longer in the master table
	Updated        []string // present in both with different names or passthrough values
	Reordered      bool
	ColumnsChanged bool
}

// Changed reports whether the reconciled table differs from what was persisted.
func (r Reconciliation) Changed() bool {
	return len(r.Added) > 0 || len(r.Dropped) > 0 || len(r.Updated) > 0 || r.Reordered || r.ColumnsChanged
}

// Reconcile rebuilds persisted against master, keyed by English name. The
// master decides rows, order, names and passthrough columns; only familiar
// flags are carried over from persisted.
func Reconcile(master *entities.MasterTable, persisted *Table) (*Table, Reconciliation) {
	var report Reconciliation

	byName := make(map[string]entities.Bird, len(persisted.Birds))
	for _, b := range persisted.Birds {
		if _, dup := byName[b.English]; !dup {
			byName[b.English] = b
		}
	}

	result := NewTable(persisted.Username, master)
	inMaster := make(map[string]struct{}, len(result.Birds))
	for i := range result.Birds {
		b := &result.Birds[i]
		inMaster[b.English] = struct{}{}

		old, ok := byName[b.English]
		if !ok {
			report.Added = append(report.Added, b.English)
			continue
		}
		b.Familiar = old.Familiar
		if old.Afrikaans != b.Afrikaans || (persisted.Columns != nil && !sameExtra(old.Extra, b.Extra)) {
			report.Updated = append(report.Updated, b.English)
		}
	}

	for _, b := range persisted.Birds {
		if _, ok := inMaster[b.English]; !ok {
			report.Dropped = append(report.Dropped, b.English)
		}
	}

	if len(report.Added) == 0 && len(report.Dropped) == 0 {
		if len(persisted.Birds) != len(result.Birds) {
			// duplicate rows in the persisted table
			report.Reordered = true
		} else {
			for i := range result.Birds {
				if persisted.Birds[i].English != result.Birds[i].English {
					report.Reordered = true
					break
				}
			}
		}
	}

	if persisted.Columns != nil && !slices.Equal(persisted.Columns, master.Columns) {
		report.ColumnsChanged = true
	}

	return result, report
}

func sameExtra(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
