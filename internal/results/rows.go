package results

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"everysearch/internal/domain"
)

// maxStatWorkers bounds concurrent stat calls per search
const maxStatWorkers = 16

var stat = os.Stat

// BuildRows stats every path and returns rows in input order.
// Missing or unreadable paths get an N/A size.
func BuildRows(ctx context.Context, paths []string) ([]domain.ResultRow, error) {
	rows := make([]domain.ResultRow, len(paths))

	var g errgroup.Group
	g.SetLimit(maxStatWorkers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rows[i] = NewRow(path)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// NewRow builds the row for a single path
func NewRow(path string) domain.ResultRow {
	row := domain.ResultRow{
		Name: filepath.Base(path),
		Dir:  filepath.Dir(path),
		Size: NotAvailable,
	}
	if info, err := stat(path); err == nil {
		row.Size = FormatSize(info.Size())
	}
	return row
}
