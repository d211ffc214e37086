// Package updater refreshes the file-name index through a privileged command.
package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
)

// ErrAlreadyRunning is returned when a refresh is requested while one is in progress
var ErrAlreadyRunning = errors.New("index update already running")

// pkexec exits 126 when the authentication dialog is dismissed
const pkexecDismissed = 126

// Outcome is the result of one refresh
type Outcome struct {
	Result  domain.UpdateResult
	Message string // trimmed stderr or error text when not successful
	Elapsed time.Duration
}

// Status renders the status line for the outcome
func (o Outcome) Status() string {
	switch o.Result {
	case domain.UpdateSucceeded:
		return "Database updated successfully!"
	case domain.UpdateCancelled:
		return "Database update cancelled"
	case domain.UpdateTimedOut:
		return "Database update timeout"
	default:
		return "Failed to update database: " + o.Message
	}
}

// Updater runs the index refresh command
type Updater interface {
	Run(ctx context.Context) (Outcome, error)
	Running() bool
}

type updater struct {
	bus     eventbus.EventBus
	command []string
	timeout time.Duration
	running atomic.Bool
}

// New creates an updater. bus may be nil.
func New(bus eventbus.EventBus, command []string, timeout time.Duration) Updater {
	if len(command) == 0 {
		command = []string{"pkexec", "updatedb"}
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &updater{bus: bus, command: command, timeout: timeout}
}

func (u *updater) Running() bool {
	return u.running.Load()
}

// Run executes the refresh command and classifies how it ended
func (u *updater) Run(ctx context.Context) (Outcome, error) {
	if !u.running.CompareAndSwap(false, true) {
		return Outcome{}, ErrAlreadyRunning
	}
	defer u.running.Store(false)

	u.publish(domain.IndexUpdateStartedEvent{Command: u.command})
	log.Printf("Starting index update: %s", strings.Join(u.command, " "))

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, u.command[0], u.command[1:]...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := classify(runCtx, err, strings.TrimSpace(stderr.String()))
	out.Elapsed = time.Since(start)

	log.Printf("Index update %s after %s: %s", out.Result, out.Elapsed.Round(time.Millisecond), out.Message)
	u.publish(domain.IndexUpdateCompletedEvent{Result: out.Result, Message: out.Message})
	return out, nil
}

func classify(ctx context.Context, err error, stderr string) Outcome {
	if err == nil {
		return Outcome{Result: domain.UpdateSucceeded}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Outcome{Result: domain.UpdateTimedOut, Message: "Database update timed out"}
	}
	if ctx.Err() != nil {
		return Outcome{Result: domain.UpdateCancelled, Message: ctx.Err().Error()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		lower := strings.ToLower(stderr)
		if exitErr.ExitCode() == pkexecDismissed ||
			strings.Contains(lower, "cancelled") || strings.Contains(lower, "dismissed") {
			return Outcome{Result: domain.UpdateCancelled, Message: stderr}
		}
		if stderr == "" {
			stderr = "Unknown error"
		}
		return Outcome{Result: domain.UpdateFailed, Message: stderr}
	}

	return Outcome{Result: domain.UpdateFailed, Message: fmt.Sprintf("failed to run update command: %v", err)}
}

func (u *updater) publish(event domain.DomainEvent) {
	if u.bus != nil {
		u.bus.Publish(event)
	}
}
