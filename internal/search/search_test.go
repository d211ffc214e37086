package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"everysearch/internal/domain"
	"everysearch/internal/filter"
	"everysearch/internal/locate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func q(text string) domain.SearchQuery {
	return domain.SearchQuery{Text: text, Location: "/", Exact: false, Type: domain.TypeAll}
}

type recorder struct {
	mu      sync.Mutex
	tickets []Ticket
	done    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) run(_ context.Context, t Ticket) {
	r.mu.Lock()
	r.tickets = append(r.tickets, t)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) seen() []Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Ticket(nil), r.tickets...)
}

func TestTriggerShortQueriesNeverRun(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), 10*time.Millisecond, rec.run)

	assert.Equal(t, DecisionEmpty, d.Trigger(q("   ")))
	assert.Equal(t, DecisionTooShort, d.Trigger(q("a")))
	assert.Equal(t, DecisionTooShort, d.Trigger(q(" é ")))
	assert.Equal(t, TooShortMessage, DecisionTooShort.Message())
	assert.Equal(t, ReadyMessage, DecisionEmpty.Message())

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.seen())
}

func TestTriggerCoalescesRapidChanges(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), 40*time.Millisecond, rec.run)

	for _, text := range []string{"re", "rep", "repo", "report"} {
		assert.Equal(t, DecisionScheduled, d.Trigger(q(text)))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("search never ran")
	}
	time.Sleep(60 * time.Millisecond)

	seen := rec.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, "report", seen[0].Query.Text)
	assert.True(t, d.Current(seen[0].Gen))
}

func TestTriggerCancelsRunningSearch(t *testing.T) {
	started := make(chan context.Context, 2)
	finished := make(chan uint64, 2)
	run := func(ctx context.Context, tk Ticket) {
		started <- ctx
		<-ctx.Done()
		finished <- tk.Gen
	}
	d := NewDebouncer(context.Background(), time.Millisecond, run)

	d.Trigger(q("first"))
	var first context.Context
	select {
	case first = <-started:
	case <-time.After(time.Second):
		t.Fatal("first search never started")
	}

	d.Trigger(q("second"))
	select {
	case gen := <-finished:
		assert.False(t, d.Current(gen), "superseded generation is stale")
	case <-time.After(time.Second):
		t.Fatal("first search was not cancelled")
	}
	assert.Error(t, first.Err())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("second search never started")
	}
	d.Cancel()
	<-finished
}

func TestCancelStopsPendingSearch(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), 30*time.Millisecond, rec.run)

	d.Trigger(q("pending"))
	gen := d.Generation()
	d.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.seen())
	assert.False(t, d.Current(gen))
}

type fakeLocator struct {
	result  locate.Result
	pattern string
}

func (f *fakeLocator) Locate(_ context.Context, pattern string) locate.Result {
	f.pattern = pattern
	res := f.result
	res.Pattern = pattern
	return res
}

func newEngine(res locate.Result) (*Engine, *fakeLocator) {
	loc := &fakeLocator{result: res}
	return NewEngine(loc, filter.New(filter.NewIgnoreRules([]string{"cache"}), false)), loc
}

func TestEngineFound(t *testing.T) {
	e, loc := newEngine(locate.Result{
		Status: locate.StatusOK,
		Paths:  []string{"/srv/report.txt", "/srv/cache/report.txt", "/srv/other.txt"},
	})

	out := e.Run(context.Background(), q("report"))
	assert.Equal(t, "*report*", loc.pattern)
	require.Equal(t, domain.StatusFound, out.Status)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "report.txt", out.Rows[0].Name)
	assert.Equal(t, "/srv", out.Rows[0].Dir)
	assert.Contains(t, out.Message(), "Found 1 results for 'report' in ")
}

func TestEngineEverythingFilteredIsNoResults(t *testing.T) {
	e, _ := newEngine(locate.Result{Status: locate.StatusOK, Paths: []string{"/home/u/.cache/report"}})

	out := e.Run(context.Background(), q("report"))
	assert.Equal(t, domain.StatusNoResults, out.Status)
	assert.Equal(t, "No results found for 'report'", out.Message())
}

func TestEngineStatuses(t *testing.T) {
	tests := []struct {
		name    string
		res     locate.Result
		want    domain.SearchStatus
		message string
	}{
		{"timeout", locate.Result{Status: locate.StatusTimeout}, domain.StatusTimeout, "Search timed out - try more specific query"},
		{"no match", locate.Result{Status: locate.StatusNoMatch}, domain.StatusNoResults, "No results found for 'abc'"},
		{"tool error", locate.Result{Status: locate.StatusToolError, Stderr: "boom"}, domain.StatusToolError, "No results found for 'abc'"},
		{"cancelled", locate.Result{Status: locate.StatusCancelled}, domain.StatusCancelled, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(tt.res)
			out := e.Run(context.Background(), q("abc"))
			assert.Equal(t, tt.want, out.Status)
			assert.Equal(t, tt.message, out.Message())
			assert.Empty(t, out.Rows)
		})
	}
}

func TestEngineToolErrorKeepsDetail(t *testing.T) {
	e, _ := newEngine(locate.Result{Status: locate.StatusToolError, Stderr: "cannot open db"})
	out := e.Run(context.Background(), q("abc"))
	assert.Equal(t, "cannot open db", out.Detail)
}

func TestEngineCancelledBeforeStart(t *testing.T) {
	e, loc := newEngine(locate.Result{Status: locate.StatusOK, Paths: []string{"/a/abc"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.Run(ctx, q("abc"))
	assert.Equal(t, domain.StatusCancelled, out.Status)
	assert.Empty(t, loc.pattern, "locator is not invoked")
}
