package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"everysearch/internal/eventbus"
	"everysearch/internal/locate"
	"everysearch/internal/opener"
	"everysearch/internal/ui"
	"everysearch/internal/updater"
	"everysearch/internal/watcher"
)

// NewCmdRoot builds the command tree; the root command runs the TUI.
// Callers that execute it directly own cleanup of a failed run; Execute
// handles that itself.
func NewCmdRoot() *cobra.Command {
	return newCmdRoot(&app{})
}

func newCmdRoot(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "everysearch [query...]",
		Short: "Instant file and folder search over the locate index",
		Long: heredoc.Doc(`
			Search the whole filesystem as you type.

			Queries run against the plocate index, are filtered by location,
			type and ignore rules, and show up in a sortable table. Use * and ?
			to match whole file names, e.g. "*.pdf".
		`),
		Example: heredoc.Doc(`
			everysearch
			everysearch report -l ~/Documents --type file
			everysearch search "*.iso" --sort size --desc
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a, strings.Join(args, " "))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/everysearch/config.toml)")
	flags.StringVarP(&a.opts.location, "location", "l", "/", "only show results under this directory")
	flags.StringVarP(&a.opts.typ, "type", "t", "all", "result type: all, file or folder")
	flags.BoolVar(&a.opts.exact, "exact", true, "match whole words in file names")
	flags.StringVar(&a.opts.tool, "tool", "plocate", "locate-compatible index tool")
	flags.BoolVar(&a.opts.debug, "debug", false, "log why each path is filtered out")

	cmd.AddCommand(
		NewCmdSearch(a),
		NewCmdUpdate(a),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := a.execute(ctx, newCmdRoot(a))
	if err == nil {
		return
	}
	if errors.Is(err, errMissingTool) {
		fmt.Fprintln(os.Stderr, MissingToolMessage)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}

func runTUI(ctx context.Context, a *app, query string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if version, err := locate.Version(ctx, a.tool); err == nil {
		log.Printf("Index tool: %s", version)
	}

	rules := a.rules()
	upd := updater.New(a.bus, a.cfg.UpdateCommand, a.cfg.UpdateTimeout())

	w, err := watcher.New(a.bus, a.cfg.IndexDB, watcher.DefaultDebounce)
	if err != nil {
		log.Printf("Index watcher disabled: %v", err)
	} else {
		w.Start(ctx)
		defer w.Close()
	}

	model := ui.NewModel(ctx, ui.Deps{
		Config:  a.cfg,
		Engine:  a.engine(rules),
		Rules:   rules,
		Opener:  opener.New(a.cfg.Opener),
		Updater: upd,
	})
	defer model.Shutdown()
	if query != "" {
		model.SetQuery(query)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	forward := func(e eventbus.DomainEvent) {
		p.Send(ui.EventMsg{Event: e})
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventIndexChanged,
		eventbus.EventIndexUpdateStarted,
		eventbus.EventError,
	} {
		unsubscribe := a.bus.Subscribe(t, forward)
		defer unsubscribe()
	}

	log.Printf("Starting UI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
