// Package search coalesces keystrokes into searches and runs the
// query, filter and presentation stages.
package search

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"everysearch/internal/domain"
)

// Decision tells the caller what Trigger did with a query
type Decision int

const (
	// DecisionEmpty means the query was blank; results should be cleared
	DecisionEmpty Decision = iota
	// DecisionTooShort means the query is under the minimum length
	DecisionTooShort
	// DecisionScheduled means a search will run after the delay
	DecisionScheduled
)

// Status text for the non-searching decisions
const (
	ReadyMessage    = "Ready. Start typing to search..."
	TooShortMessage = "Type at least 2 characters..."
	SearchingText   = "Searching..."
)

// Message returns the status line for the decision
func (d Decision) Message() string {
	switch d {
	case DecisionEmpty:
		return ReadyMessage
	case DecisionTooShort:
		return TooShortMessage
	default:
		return SearchingText
	}
}

// Ticket identifies one scheduled search
type Ticket struct {
	Gen   uint64
	Query domain.SearchQuery
}

// RunFunc performs a search. ctx is cancelled as soon as the search is superseded.
type RunFunc func(ctx context.Context, t Ticket)

// Debouncer keeps at most one search scheduled or running.
// Every Trigger bumps the generation and cancels whatever came before.
type Debouncer struct {
	mu     sync.Mutex
	parent context.Context
	delay  time.Duration
	run    RunFunc

	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer; searches inherit cancellation from parent
func NewDebouncer(parent context.Context, delay time.Duration, run RunFunc) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{parent: parent, delay: delay, run: run}
}

// Trigger records a query change and decides whether to schedule a search
func (d *Debouncer) Trigger(q domain.SearchQuery) Decision {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++

	term := q.Term()
	if term == "" {
		return DecisionEmpty
	}
	if utf8.RuneCountInString(term) < domain.MinQueryLength {
		return DecisionTooShort
	}

	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	ticket := Ticket{Gen: d.gen, Query: q}
	d.timer = time.AfterFunc(d.delay, func() {
		if ctx.Err() != nil {
			return
		}
		d.run(ctx, ticket)
	})
	return DecisionScheduled
}

// Current reports whether gen belongs to the live search
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Generation returns the live generation
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Cancel stops any pending or running search and invalidates its generation
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
