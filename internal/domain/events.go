package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventError               EventType = "Error"
	EventIndexChanged        EventType = "IndexChanged"
	EventIndexUpdateStarted  EventType = "IndexUpdateStarted"
	EventIndexUpdateComplete EventType = "IndexUpdateCompleted"
	EventConfigLoaded        EventType = "ConfigLoaded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ErrorEvent is emitted when a background service fails
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// IndexChangedEvent is emitted when the index database file changes on disk
type IndexChangedEvent struct {
	Path string
}

func (e IndexChangedEvent) Type() EventType { return EventIndexChanged }

// IndexUpdateStartedEvent is emitted when an index refresh begins
type IndexUpdateStartedEvent struct {
	Command []string
}

func (e IndexUpdateStartedEvent) Type() EventType { return EventIndexUpdateStarted }

// IndexUpdateCompletedEvent is emitted when an index refresh finishes
type IndexUpdateCompletedEvent struct {
	Result  UpdateResult
	Message string // stderr or error text when not successful
}

func (e IndexUpdateCompletedEvent) Type() EventType { return EventIndexUpdateComplete }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

