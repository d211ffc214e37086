// Package filter narrows raw index output down to the paths a query asks for.
package filter

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"everysearch/internal/domain"
)

// stat is swapped in tests to simulate permission failures
var stat = os.Stat

// Filter applies ignore rules, location scope, type and file-name matching
type Filter struct {
	Rules *IgnoreRules
	Debug bool
}

// New creates a filter over the given ignore rules
func New(rules *IgnoreRules, debug bool) *Filter {
	return &Filter{Rules: rules, Debug: debug}
}

// Apply returns the paths that pass every check, in input order.
// It returns nil as soon as ctx is cancelled.
func (f *Filter) Apply(ctx context.Context, paths []string, q domain.SearchQuery) []string {
	location := scope(q.Location)
	matchName := newNameMatcher(q)

	if f.Debug {
		log.Printf("Filtering %d paths with location %q, type %s, exact %v",
			len(paths), location, q.Type, q.EffectiveExact())
	}

	filtered := make([]string, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return nil
		}
		if strings.TrimSpace(path) == "" {
			continue
		}

		if pattern, ok := f.Rules.Match(path); ok {
			f.debugf("Ignoring %s - matches pattern %q", path, pattern)
			continue
		}

		if !inScope(path, location) {
			f.debugf("Skipping %s - not in location %s", path, location)
			continue
		}

		if !f.typeMatches(path, q.Type) {
			continue
		}

		if !matchName(filepath.Base(path)) {
			f.debugf("Skipping %s - name does not match %q", path, q.Term())
			continue
		}

		filtered = append(filtered, path)
	}

	if f.Debug {
		log.Printf("Filtered %d -> %d results", len(paths), len(filtered))
	}
	return filtered
}

// scope normalizes a location; "" means everything
func scope(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	location = filepath.Clean(location)
	if location == "/" || location == "." {
		return ""
	}
	return location
}

func inScope(path, location string) bool {
	if location == "" {
		return true
	}
	return path == location || strings.HasPrefix(path, location+"/")
}

// typeMatches checks the on-disk type. Paths that no longer exist pass;
// permission failures exclude the path.
func (f *Filter) typeMatches(path string, typ domain.TypeFilter) bool {
	if typ == "" || typ == domain.TypeAll {
		return true
	}

	info, err := stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			f.debugf("Permission error checking type for %s: %v", path, err)
			return false
		}
		return true
	}

	switch typ {
	case domain.TypeFile:
		if !info.Mode().IsRegular() {
			f.debugf("Skipping %s - not a file", path)
			return false
		}
	case domain.TypeFolder:
		if !info.IsDir() {
			f.debugf("Skipping %s - not a folder", path)
			return false
		}
	}
	return true
}

// newNameMatcher picks the base-name check for the query:
// whole-word when exact mode is effective, full-name glob when the query has
// wildcards, and case-insensitive substring otherwise.
func newNameMatcher(q domain.SearchQuery) func(string) bool {
	term := q.Term()
	if term == "" {
		return func(string) bool { return true }
	}

	if domain.HasWildcard(term) {
		pattern := strings.ToLower(term)
		if !doublestar.ValidatePattern(pattern) {
			log.Printf("Invalid wildcard pattern %q", term)
			return func(string) bool { return false }
		}
		return func(name string) bool {
			ok, err := doublestar.Match(pattern, strings.ToLower(name))
			return err == nil && ok
		}
	}

	if q.EffectiveExact() {
		word := lowerRunes(term)
		return func(name string) bool {
			return containsWord(lowerRunes(name), word)
		}
	}

	lower := strings.ToLower(term)
	return func(name string) bool {
		return strings.Contains(strings.ToLower(name), lower)
	}
}

func (f *Filter) debugf(format string, args ...any) {
	if f.Debug {
		log.Printf(format, args...)
	}
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containsWord reports whether word occurs in text with a word boundary at
// each edge, treating letters and digits of any script as word characters.
// A boundary is only required on an edge whose rune is itself a word rune.
func containsWord(text, word []rune) bool {
	n := len(word)
	if n == 0 {
		return true
	}
	needBefore := isWordRune(word[0])
	needAfter := isWordRune(word[n-1])

	for i := 0; i+n <= len(text); i++ {
		if !runesEqual(text[i:i+n], word) {
			continue
		}
		if needBefore && i > 0 && isWordRune(text[i-1]) {
			continue
		}
		if needAfter && i+n < len(text) && isWordRune(text[i+n]) {
			continue
		}
		return true
	}
	return false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
