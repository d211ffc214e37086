//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Workspace is an isolated home with a fake index tool and config
type Workspace struct {
	Root       string
	BinDir     string
	FilesDir   string
	ConfigPath string
	IndexPath  string
}

// WorkspaceOption configures workspace creation
type WorkspaceOption func(*workspaceOptions)

type workspaceOptions struct {
	files   map[string]string // relative path -> contents; a trailing slash makes a folder
	ignore  []string
	noTool  bool
	updates string // body of the fake update command
}

// WithFiles creates the files and lists them in the fake index
func WithFiles(files map[string]string) WorkspaceOption {
	return func(opts *workspaceOptions) {
		opts.files = files
	}
}

// WithIgnore sets the configured ignore rules
func WithIgnore(patterns ...string) WorkspaceOption {
	return func(opts *workspaceOptions) {
		opts.ignore = patterns
	}
}

// WithoutTool leaves the fake plocate out of the workspace
func WithoutTool() WorkspaceOption {
	return func(opts *workspaceOptions) {
		opts.noTool = true
	}
}

// CreateTestWorkspace creates a temporary home whose fake plocate prints the workspace index
func (tf *TUITestFramework) CreateTestWorkspace(options ...WorkspaceOption) (*Workspace, error) {
	opts := workspaceOptions{
		// t.TempDir lives under /tmp, which the default rules drop
		ignore:  []string{`\.git/`},
		updates: "exit 0",
	}
	for _, opt := range options {
		opt(&opts)
	}

	root := tf.t.TempDir()
	ws := &Workspace{
		Root:       root,
		BinDir:     filepath.Join(root, "bin"),
		FilesDir:   filepath.Join(root, "files"),
		ConfigPath: filepath.Join(root, "config.toml"),
		IndexPath:  filepath.Join(root, "index.txt"),
	}
	for _, dir := range []string{ws.BinDir, ws.FilesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	var index []string
	for rel, contents := range opts.files {
		path := filepath.Join(ws.FilesDir, rel)
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, err
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
				return nil, err
			}
		}
		index = append(index, path)
	}
	sort.Strings(index)
	if err := os.WriteFile(ws.IndexPath, []byte(strings.Join(index, "\n")+"\n"), 0644); err != nil {
		return nil, err
	}

	if !opts.noTool {
		// The real tool matches the glob; the app's own filters do the rest.
		tool := fmt.Sprintf("#!/bin/sh\n[ \"$1\" = --version ] && { echo 'plocate 1.1.22'; exit 0; }\ncat %q\n", ws.IndexPath)
		if err := os.WriteFile(filepath.Join(ws.BinDir, "plocate"), []byte(tool), 0755); err != nil {
			return nil, err
		}
	}
	update := filepath.Join(ws.BinDir, "fake-updatedb")
	if err := os.WriteFile(update, []byte("#!/bin/sh\n"+opts.updates+"\n"), 0755); err != nil {
		return nil, err
	}

	quoted := make([]string, len(opts.ignore))
	for i, p := range opts.ignore {
		quoted[i] = "'" + p + "'"
	}
	config := fmt.Sprintf(
		"tool = 'plocate'\nindex_db = %q\nopener = 'true'\nupdate_command = [%q]\nignore = [%s]\n\n[search]\ndebounce_ms = 100\n",
		ws.IndexPath, update, strings.Join(quoted, ", "),
	)
	if err := os.WriteFile(ws.ConfigPath, []byte(config), 0644); err != nil {
		return nil, err
	}

	tf.workspace = ws
	return ws, nil
}
