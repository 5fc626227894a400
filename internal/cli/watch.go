package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/carepath/pkg/adapters/file"
)

// Refresher drops cached pathways. *carepath.Engine satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, ids ...string) error
}

// WatchPathways reloads pathways from dir as their files change, until ctx is done.
// Consultations in flight keep their cursor; one whose node disappears restarts.
// notify, when non-nil, receives a system message per reload.
func WatchPathways(ctx context.Context, dir string, engine Refresher, logger *slog.Logger, notify io.Writer) error {
	w := file.NewWatcher(dir, file.WithWatchLogger(logger))
	return w.Run(ctx, func(c file.Change) {
		var err error
		if c.Catalog {
			err = engine.Refresh(ctx)
		} else {
			err = engine.Refresh(ctx, c.PathwayID)
		}
		if err != nil {
			logger.Error("Reload failed", "pathway", c.PathwayID, "catalog", c.Catalog, "error", err)
			return
		}
		logger.Info("Change detected, pathways reloaded", "pathway", c.PathwayID, "catalog", c.Catalog)
		if notify != nil {
			name := c.PathwayID
			if c.Catalog {
				name = file.CatalogFile
			}
			printSystemMessage(notify, "Change detected in '%s'.", name)
		}
	})
}
