package source

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/ladder/schema"
	"github.com/spektr-org/ladder/table"
)

// LoadFrame reads one source and validates it against layout.
//
// Errors: SourceUnavailable when the file cannot be opened or read,
// SchemaMismatch when a required column is absent, MalformedRow when a row
// fails validation (unless WithSkipMalformed). Context errors pass through.
func LoadFrame(ctx context.Context, path string, layout schema.Layout, opts ...Option) (*table.Frame, error) {
	cfg := applyOptions(opts)

	raw, err := readRaw(ctx, path, cfg)
	if err != nil {
		return nil, classify(err, layout.Name, path)
	}

	frame, err := decode(ctx, raw, layout, path, cfg)
	if err != nil {
		return nil, err
	}

	cfg.logger.Info("source loaded",
		zap.String("source", layout.Name),
		zap.String("path", path),
		zap.Int("rows", frame.Len()),
		zap.Int("skipped", frame.Meta().Skipped),
		zap.Strings("columns", frame.Columns()))
	return frame, nil
}

// LoadSources reads the panel and the snapshot concurrently. Row and column
// order of each file is preserved. The first failure cancels the other read.
func LoadSources(ctx context.Context, panelPath, snapshotPath string, opts ...Option) (*table.Frame, *table.Frame, error) {
	var panel, snapshot *table.Frame

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := LoadFrame(gctx, panelPath, schema.PanelLayout(), opts...)
		if err != nil {
			return err
		}
		panel = f
		return nil
	})
	g.Go(func() error {
		f, err := LoadFrame(gctx, snapshotPath, schema.SnapshotLayout(), opts...)
		if err != nil {
			return err
		}
		snapshot = f
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return panel, snapshot, nil
}

// classify tags reader failures with the source they came from.
func classify(err error, name, path string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var te *table.Error
	if errors.As(err, &te) {
		te.Source = name
		te.Path = path
		return te
	}
	return &table.Error{
		Kind:   table.KindSourceUnavailable,
		Source: name,
		Path:   path,
		Err:    err,
	}
}
