package entities

// Required columns of the master dataset.
const (
	ColumnEnglish   = "English"
	ColumnAfrikaans = "Afrikaans"
	ColumnFamiliar  = "familiar"
)

// Bird is one row of the master table, optionally carrying a user's familiar flag.
type Bird struct {
	English   string            `json:"english"`
	Afrikaans string            `json:"afrikaans"`
	Familiar  bool              `json:"familiar"`
	Extra     map[string]string `json:"extra,omitempty"` // passthrough columns, keyed by trimmed header
}

// Label is the "English / Afrikaans" form shown on cards.
func (b Bird) Label() string {
	return b.English + " / " + b.Afrikaans
}

// Value returns the cell for a column, including the two named ones.
func (b Bird) Value(column string) string {
	switch column {
	case ColumnEnglish:
		return b.English
	case ColumnAfrikaans:
		return b.Afrikaans
	default:
		return b.Extra[column]
	}
}

// MasterTable is the shared, read-only bird dataset.
type MasterTable struct {
	Columns []string `json:"columns"` // header order as read, trimmed
	Birds   []Bird   `json:"birds"`
}

// Len returns the number of birds.
func (m *MasterTable) Len() int {
	return len(m.Birds)
}

// CloneBirds returns a deep copy of the birds with every familiar flag cleared.
func (m *MasterTable) CloneBirds() []Bird {
	birds := make([]Bird, len(m.Birds))
	for i, b := range m.Birds {
		birds[i] = b.Clone()
		birds[i].Familiar = false
	}
	return birds
}

// Clone returns a copy that shares no maps with b.
func (b Bird) Clone() Bird {
	if b.Extra != nil {
		extra := make(map[string]string, len(b.Extra))
		for k, v := range b.Extra {
			extra[k] = v
		}
		b.Extra = extra
	}
	return b
}
