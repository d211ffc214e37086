package results

import (
	"sort"
	"strings"

	"everysearch/internal/domain"
)

// Column identifies a sortable table column
type Column int

const (
	ColumnNone Column = iota
	ColumnName
	ColumnPath
	ColumnSize
)

// ParseColumn maps a CLI column name to a Column
func ParseColumn(s string) (Column, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return ColumnName, true
	case "path", "dir":
		return ColumnPath, true
	case "size":
		return ColumnSize, true
	case "", "none":
		return ColumnNone, true
	default:
		return ColumnNone, false
	}
}

func (c Column) String() string {
	switch c {
	case ColumnName:
		return "Name"
	case ColumnPath:
		return "Path"
	case ColumnSize:
		return "Size"
	default:
		return ""
	}
}

// Sorter holds the active sort column and direction.
// The zero value keeps rows in the order the index tool returned them.
type Sorter struct {
	Column Column
	Desc   bool
}

// Toggle flips direction when col is already active, otherwise sorts ascending by col
func (s *Sorter) Toggle(col Column) {
	if s.Column == col {
		s.Desc = !s.Desc
		return
	}
	s.Column = col
	s.Desc = false
}

// Sort orders rows in place. Equal keys keep their relative order.
func (s Sorter) Sort(rows []domain.ResultRow) {
	var less func(a, b domain.ResultRow) bool
	switch s.Column {
	case ColumnName:
		less = func(a, b domain.ResultRow) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case ColumnPath:
		less = func(a, b domain.ResultRow) bool {
			return strings.ToLower(a.Dir) < strings.ToLower(b.Dir)
		}
	case ColumnSize:
		less = func(a, b domain.ResultRow) bool {
			return ParseSize(a.Size) < ParseSize(b.Size)
		}
	default:
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if s.Desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// Header returns the column title with ↑ or ↓ when it is the active sort
func (s Sorter) Header(col Column) string {
	title := col.String()
	if s.Column != col || col == ColumnNone {
		return title
	}
	if s.Desc {
		return title + " ↓"
	}
	return title + " ↑"
}
