package filter

import (
	"log"
	"regexp"
	"strings"
	"sync"
)

type rule struct {
	pattern string
	re      *regexp.Regexp // nil when the pattern does not compile
}

// IgnoreRules is an ordered, editable list of regex patterns that exclude paths.
// Patterns are matched case-insensitively anywhere in the path. Patterns that
// fail to compile stay in the list so they can be edited, but never match.
type IgnoreRules struct {
	mu       sync.RWMutex
	rules    []rule
	defaults []string
}

// NewIgnoreRules creates a list seeded with defaults; Reset restores them
func NewIgnoreRules(defaults []string) *IgnoreRules {
	r := &IgnoreRules{defaults: append([]string(nil), defaults...)}
	r.Reset()
	return r
}

func compileRule(pattern string) rule {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		log.Printf("Invalid ignore pattern %q: %v", pattern, err)
		return rule{pattern: pattern}
	}
	return rule{pattern: pattern, re: re}
}

// List returns a copy of the patterns in order
func (r *IgnoreRules) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.rules))
	for i, rl := range r.rules {
		out[i] = rl.pattern
	}
	return out
}

// Len returns the number of patterns
func (r *IgnoreRules) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Add appends a pattern. Blank and duplicate patterns are rejected.
func (r *IgnoreRules) Add(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(pattern) >= 0 {
		return false
	}
	r.rules = append(r.rules, compileRule(pattern))
	return true
}

// Remove deletes the pattern at index i
func (r *IgnoreRules) Remove(i int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.rules) {
		return false
	}
	r.rules = append(r.rules[:i:i], r.rules[i+1:]...)
	return true
}

// Update replaces the pattern at index i. Blank patterns and patterns listed
// at another index are rejected; rewriting a pattern to itself succeeds.
func (r *IgnoreRules) Update(i int, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.rules) {
		return false
	}
	if j := r.indexOf(pattern); j >= 0 && j != i {
		return false
	}
	if r.rules[i].pattern == pattern {
		return true
	}
	r.rules[i] = compileRule(pattern)
	return true
}

// Reset restores the default patterns
func (r *IgnoreRules) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = r.rules[:0]
	for _, p := range r.defaults {
		p = strings.TrimSpace(p)
		if p == "" || r.indexOf(p) >= 0 {
			continue
		}
		r.rules = append(r.rules, compileRule(p))
	}
}

// Valid reports whether the pattern at index i compiled
func (r *IgnoreRules) Valid(i int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return i >= 0 && i < len(r.rules) && r.rules[i].re != nil
}

// Match returns the first pattern that matches path
func (r *IgnoreRules) Match(path string) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rl := range r.rules {
		if rl.re != nil && rl.re.MatchString(path) {
			return rl.pattern, true
		}
	}
	return "", false
}

func (r *IgnoreRules) indexOf(pattern string) int {
	for i, rl := range r.rules {
		if rl.pattern == pattern {
			return i
		}
	}
	return -1
}
