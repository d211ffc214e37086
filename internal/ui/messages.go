package ui

import (
	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
	"everysearch/internal/search"
	"everysearch/internal/updater"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// searchStartedMsg is sent when a debounced search leaves the timer
type searchStartedMsg struct {
	gen uint64
}

// resultsMsg carries a finished search back to the UI
type resultsMsg struct {
	gen     uint64
	outcome search.Outcome
}

// researchMsg re-runs the current query, e.g. after the index changed
type researchMsg struct{}

// updateDoneMsg contains the result of an index refresh
type updateDoneMsg struct {
	outcome updater.Outcome
	err     error
}

// actionMsg reports the result of open, open-folder and copy actions
type actionMsg struct {
	action string
	row    domain.ResultRow
	err    error
}

// helpPagerMsg contains the result of the help pager
type helpPagerMsg struct {
	err error
}
