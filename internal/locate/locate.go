// Package locate runs the system file-name index tool (plocate by default).
package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"everysearch/internal/domain"
)

// ErrToolNotFound is returned when the index tool is not on PATH
var ErrToolNotFound = errors.New("index tool not found")

var termPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// Status classifies a tool invocation
type Status int

const (
	StatusOK Status = iota
	StatusNoMatch
	StatusTimeout
	StatusToolError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoMatch:
		return "no-match"
	case StatusTimeout:
		return "timeout"
	case StatusToolError:
		return "tool-error"
	default:
		return "cancelled"
	}
}

// Result is the outcome of one index lookup
type Result struct {
	Pattern string
	Paths   []string
	Status  Status
	Stderr  string
	Elapsed time.Duration
}

// Locator looks up paths in the file-name index
type Locator interface {
	Locate(ctx context.Context, pattern string) Result
}

// Tool invokes an external locate-compatible binary
type Tool struct {
	Path    string
	Timeout time.Duration
}

// NewTool creates a Tool; timeout <= 0 means 3 seconds
func NewTool(path string, timeout time.Duration) *Tool {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Tool{Path: path, Timeout: timeout}
}

// CheckTool resolves the tool on PATH
func CheckTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return path, nil
}

// Version returns the first line of `<tool> --version`
func Version(ctx context.Context, tool string) (string, error) {
	out, err := exec.CommandContext(ctx, tool, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to query %s version: %w", tool, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

// BuildPattern turns a user query into the glob passed to the tool.
//
// File searches with wildcards fetch broadly using the longest literal term;
// the exact wildcard is then applied to base names by the result filter.
func BuildPattern(text string, typ domain.TypeFilter) string {
	text = strings.TrimSpace(text)
	if !domain.HasWildcard(text) {
		return "*" + text + "*"
	}

	if typ == domain.TypeFile {
		longest := ""
		for _, term := range termPattern.FindAllString(text, -1) {
			if len(term) > len(longest) {
				longest = term
			}
		}
		if longest != "" {
			return "*" + longest + "*"
		}
		return "*" + text + "*"
	}

	pattern := text
	if !strings.HasPrefix(pattern, "*") {
		pattern = "*" + pattern
	}
	if !strings.HasSuffix(pattern, "*") {
		pattern = pattern + "*"
	}
	return pattern
}

// Locate runs `<tool> --ignore-case <pattern>` and classifies the outcome
func (t *Tool) Locate(ctx context.Context, pattern string) Result {
	start := time.Now()
	res := Result{Pattern: pattern}

	runCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.Path, "--ignore-case", pattern)
	cmd.WaitDelay = 500 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Elapsed = time.Since(start)
	res.Stderr = strings.TrimSpace(stderr.String())

	switch {
	case ctx.Err() != nil:
		res.Status = StatusCancelled
		return res
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		log.Printf("%s timed out after %s for %q", t.Path, t.Timeout, pattern)
		res.Status = StatusTimeout
		return res
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && res.Stderr == "" {
			res.Status = StatusNoMatch
			return res
		}
		log.Printf("%s failed for %q: %v: %s", t.Path, pattern, err, res.Stderr)
		res.Status = StatusToolError
		return res
	}

	res.Paths = SplitLines(stdout.String())
	if len(res.Paths) == 0 {
		res.Status = StatusNoMatch
	} else {
		res.Status = StatusOK
	}
	return res
}

// SplitLines splits newline-delimited tool output, dropping blank lines
func SplitLines(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}
