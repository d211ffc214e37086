package search

import (
	"context"
	"fmt"
	"log"
	"time"

	"everysearch/internal/domain"
	"everysearch/internal/filter"
	"everysearch/internal/locate"
	"everysearch/internal/results"
)

// Outcome is what a finished search hands to the presenter
type Outcome struct {
	Query   domain.SearchQuery
	Pattern string
	Rows    []domain.ResultRow
	Status  domain.SearchStatus
	Elapsed time.Duration
	Detail  string // tool stderr when Status is StatusToolError
}

// Message renders the status line for the outcome
func (o Outcome) Message() string {
	switch o.Status {
	case domain.StatusFound:
		return fmt.Sprintf("Found %d results for '%s' in %.2fs", len(o.Rows), o.Query.Term(), o.Elapsed.Seconds())
	case domain.StatusTimeout:
		return "Search timed out - try more specific query"
	case domain.StatusCancelled:
		return ""
	default:
		// tool failures are reported as no results; Detail carries the reason
		return fmt.Sprintf("No results found for '%s'", o.Query.Term())
	}
}

// Engine runs the lookup, filter and row-building stages for one query
type Engine struct {
	locator locate.Locator
	filter  *filter.Filter
}

// NewEngine creates an engine
func NewEngine(locator locate.Locator, f *filter.Filter) *Engine {
	return &Engine{locator: locator, filter: f}
}

// Run executes the pipeline. Cancellation is checked between stages and
// reported as StatusCancelled with no rows.
func (e *Engine) Run(ctx context.Context, q domain.SearchQuery) Outcome {
	start := time.Now()
	out := Outcome{Query: q, Pattern: locate.BuildPattern(q.Term(), q.Type)}

	cancelled := func() Outcome {
		out.Rows = nil
		out.Status = domain.StatusCancelled
		out.Elapsed = time.Since(start)
		return out
	}

	if ctx.Err() != nil {
		return cancelled()
	}

	res := e.locator.Locate(ctx, out.Pattern)
	if ctx.Err() != nil || res.Status == locate.StatusCancelled {
		return cancelled()
	}

	switch res.Status {
	case locate.StatusTimeout:
		out.Status = domain.StatusTimeout
		out.Elapsed = time.Since(start)
		return out
	case locate.StatusToolError:
		out.Status = domain.StatusToolError
		out.Detail = res.Stderr
		out.Elapsed = time.Since(start)
		return out
	case locate.StatusNoMatch:
		out.Status = domain.StatusNoResults
		out.Elapsed = time.Since(start)
		return out
	}

	paths := e.filter.Apply(ctx, res.Paths, q)
	if ctx.Err() != nil {
		return cancelled()
	}
	if len(paths) == 0 {
		out.Status = domain.StatusNoResults
		out.Elapsed = time.Since(start)
		return out
	}

	rows, err := results.BuildRows(ctx, paths)
	if err != nil {
		return cancelled()
	}

	out.Rows = rows
	out.Status = domain.StatusFound
	out.Elapsed = time.Since(start)
	log.Printf("Search %q: %d raw, %d shown in %s", q.Term(), len(res.Paths), len(rows), out.Elapsed)
	return out
}
