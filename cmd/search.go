package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"everysearch/internal/domain"
	"everysearch/internal/results"
	"everysearch/internal/search"
)

type searchOptions struct {
	sort  string
	desc  bool
	plain bool
}

// NewCmdSearch runs one query through the pipeline and prints the rows
func NewCmdSearch(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single search and print the results",
		Long: heredoc.Doc(`
			Run one query through the same pipeline as the interactive view
			and print the matches as a table.

			Location, type, exact and ignore settings come from the config
			file and the global flags.
		`),
		Example: heredoc.Doc(`
			everysearch search invoice --type file
			everysearch search "*.log" -l /var/log --sort size --desc
			everysearch search report --plain | xargs ls -l
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, ok := results.ParseColumn(opts.sort)
			if !ok {
				return fmt.Errorf("unknown sort column %q (use name, path or size)", opts.sort)
			}

			q := domain.SearchQuery{
				Text:     strings.Join(args, " "),
				Location: a.cfg.Search.Location,
				Exact:    a.cfg.Search.Exact,
				Type:     a.cfg.TypeFilter(),
			}
			if len([]rune(strings.TrimSpace(q.Text))) < domain.MinQueryLength {
				return fmt.Errorf("query must be at least %d characters", domain.MinQueryLength)
			}

			out := a.engine(a.rules()).Run(cmd.Context(), q)
			sorter := results.Sorter{Column: col, Desc: opts.desc}
			sorter.Sort(out.Rows)

			w := cmd.OutOrStdout()
			if opts.plain {
				printPlain(w, out.Rows)
			} else {
				printTable(w, out.Rows, sorter)
			}
			if out.Status != domain.StatusFound || !opts.plain {
				fmt.Fprintln(cmd.ErrOrStderr(), summary(out))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort by name, path or size")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print bare paths, one per line")
	return cmd
}

func summary(out search.Outcome) string {
	msg := out.Message()
	if out.Detail != "" {
		msg += " (" + out.Detail + ")"
	}
	return msg
}

func printPlain(w io.Writer, rows []domain.ResultRow) {
	for _, r := range rows {
		fmt.Fprintln(w, r.Path())
	}
}

func printTable(w io.Writer, rows []domain.ResultRow, sorter results.Sorter) {
	if len(rows) == 0 {
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	sizeStyle := cellStyle.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(
			sorter.Header(results.ColumnName),
			sorter.Header(results.ColumnPath),
			sorter.Header(results.ColumnSize),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return sizeStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		t.Row(r.Name, r.Dir, r.Size)
	}
	fmt.Fprintln(w, t.Render())
}
