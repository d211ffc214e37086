package domain

import (
	"path/filepath"
	"strings"
)

// MinQueryLength is the shortest query that reaches the index tool
const MinQueryLength = 2

// TypeFilter restricts results to files or folders
type TypeFilter string

const (
	TypeAll    TypeFilter = "all"
	TypeFile   TypeFilter = "file"
	TypeFolder TypeFilter = "folder"
)

// ParseTypeFilter maps user input to a TypeFilter, defaulting to TypeAll
func ParseTypeFilter(s string) TypeFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "files", "f":
		return TypeFile
	case "folder", "folders", "dir", "directory", "d":
		return TypeFolder
	default:
		return TypeAll
	}
}

// Next cycles all -> file -> folder -> all
func (t TypeFilter) Next() TypeFilter {
	switch t {
	case TypeAll:
		return TypeFile
	case TypeFile:
		return TypeFolder
	default:
		return TypeAll
	}
}

// SearchQuery is the state of the search form at the moment a search is triggered
type SearchQuery struct {
	Text     string
	Location string
	Exact    bool
	Type     TypeFilter
}

// Term returns the trimmed query text
func (q SearchQuery) Term() string {
	return strings.TrimSpace(q.Text)
}

// HasWildcard reports whether the query uses glob wildcards
func HasWildcard(text string) bool {
	return strings.ContainsAny(text, "*?")
}

// DisablesExact reports whether the query contains characters that switch exact mode off
func DisablesExact(text string) bool {
	return strings.ContainsAny(text, "*?[(")
}

// EffectiveExact is the exact flag after the auto-disable rule is applied
func (q SearchQuery) EffectiveExact() bool {
	return q.Exact && !DisablesExact(q.Term())
}

// ResultRow is one line of the results table
type ResultRow struct {
	Name string
	Dir  string
	Size string // formatted size or "N/A"
}

// Path rebuilds the absolute path of the row
func (r ResultRow) Path() string {
	return filepath.Join(r.Dir, r.Name)
}

// SearchStatus classifies how a search ended
type SearchStatus int

const (
	StatusFound SearchStatus = iota
	StatusNoResults
	StatusTimeout
	StatusToolError
	StatusCancelled
)

func (s SearchStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoResults:
		return "no-results"
	case StatusTimeout:
		return "timeout"
	case StatusToolError:
		return "tool-error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// UpdateResult classifies how an index refresh ended
type UpdateResult int

const (
	UpdateSucceeded UpdateResult = iota
	UpdateCancelled
	UpdateTimedOut
	UpdateFailed
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateSucceeded:
		return "succeeded"
	case UpdateCancelled:
		return "cancelled"
	case UpdateTimedOut:
		return "timed out"
	default:
		return "failed"
	}
}
