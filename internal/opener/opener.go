// Package opener hands result paths to the desktop: default application,
// file manager and clipboard.
package opener

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrPermission  = errors.New("permission denied")
	ErrUnknownType = errors.New("unknown file type")
)

var writeClipboard = clipboard.WriteAll

// DefaultCommand returns the platform's default opener
func DefaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// Opener launches paths with an external command
type Opener struct {
	Command string
}

// New creates an opener; an empty command selects the platform default
func New(command string) *Opener {
	if command == "" {
		command = DefaultCommand()
	}
	return &Opener{Command: command}
}

// Open launches the opener on path without waiting for it to exit
func (o *Opener) Open(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermission, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrUnknownType, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", ErrPermission, path)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	f.Close()

	return o.start(path)
}

// OpenContaining opens the directory holding path
func (o *Opener) OpenContaining(path string) error {
	return o.Open(filepath.Dir(path))
}

func (o *Opener) start(path string) error {
	cmd := exec.Command(o.Command, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run %s: %w", o.Command, err)
	}
	log.Printf("Opened %s with %s (pid %d)", path, o.Command, cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("%s %s exited: %v", o.Command, path, err)
		}
	}()
	return nil
}

// CopyPath puts path on the system clipboard
func CopyPath(path string) error {
	if err := writeClipboard(path); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
