package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"everysearch/internal/config"
	"everysearch/internal/domain"
	"everysearch/internal/eventbus"
	"everysearch/internal/filter"
	"everysearch/internal/locate"
	"everysearch/internal/search"
)

// MissingToolMessage is printed when the index tool is not installed
const MissingToolMessage = "plocate not found! Please install it: sudo apt install plocate"

// options are the persistent flags shared by every command
type options struct {
	configPath string
	location   string
	typ        string
	exact      bool
	tool       string
	debug      bool
}

// app holds what every command needs once startup has run
type app struct {
	opts    options
	cfg     *config.Config
	cfgSvc  config.ConfigService
	bus     eventbus.EventBus
	tool    string
	logFile *os.File
}

// lookupTool is replaced in tests
var lookupTool = locate.CheckTool

// setup loads configuration, applies flag overrides and resolves the tool.
func (a *app) setup(cmd *cobra.Command) error {
	a.openLog()

	a.bus = eventbus.New()
	a.bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if loaded, ok := e.(eventbus.ConfigLoadedEvent); ok {
			log.Printf("Loaded config %s", loaded.Path)
		}
	})
	a.cfgSvc = config.NewConfigServiceWithBus(a.opts.configPath, a.bus)
	cfg, err := a.cfgSvc.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.applyFlags(cmd, cfg)
	a.cfg = cfg

	path, err := lookupTool(cfg.Tool)
	if err != nil {
		if errors.Is(err, locate.ErrToolNotFound) {
			return errMissingTool
		}
		return err
	}
	a.tool = path
	log.Printf("Using index tool %s, config %s", path, a.cfgSvc.Path())
	return nil
}

var errMissingTool = errors.New(MissingToolMessage)

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("location") {
		cfg.Search.Location = a.opts.location
	}
	if flags.Changed("type") {
		cfg.Search.Type = string(domain.ParseTypeFilter(a.opts.typ))
	}
	if flags.Changed("exact") {
		cfg.Search.Exact = a.opts.exact
	}
	if flags.Changed("tool") {
		cfg.Tool = a.opts.tool
	}
}

// openLog redirects the standard logger to the cache dir so the TUI owns the terminal
func (a *app) openLog() {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "everysearch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.SetOutput(io.Discard)
		return
	}

	logFile, err := os.OpenFile(filepath.Join(dir, "everysearch.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	a.logFile = logFile
	log.SetOutput(logFile)
}

// rules builds the in-memory ignore list from config
func (a *app) rules() *filter.IgnoreRules {
	return filter.NewIgnoreRules(a.cfg.Ignore)
}

func (a *app) engine(rules *filter.IgnoreRules) *search.Engine {
	locator := locate.NewTool(a.tool, a.cfg.Timeout())
	return search.NewEngine(locator, filter.New(rules, a.opts.debug))
}

// execute runs the command tree and releases what setup acquired even when
// setup or the command fails, since cobra skips post-run hooks on error
func (a *app) execute(ctx context.Context, cmd *cobra.Command) error {
	defer a.close()
	return cmd.ExecuteContext(ctx)
}

// close is safe to call more than once
func (a *app) close() {
	if a.bus != nil {
		a.bus.Close()
		a.bus = nil
	}
	if a.logFile != nil {
		log.SetOutput(io.Discard)
		a.logFile.Close()
		a.logFile = nil
	}
}
