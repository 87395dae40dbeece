package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/messaging"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/remote"
	"github.com/renderinc/catalog-search/internal/search"
	"github.com/renderinc/catalog-search/internal/web"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve the catalog query API, typeahead suggestions, the backdrop
stream and a small search page.

With --watch and the memory driver, edits to the seed file are picked up
without a restart. With a broker URL configured, catalog_changed notices
from imports rebuild the suggestion index.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the seed file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	idx, err := openIndex(ctx, src)
	if err != nil {
		return err
	}
	defer idx.Close()
	if src.memory == nil {
		rebuildIndex(ctx, idx, src)
	}

	srv, err := web.NewServer(src, query.Configs(), idx, logger, web.Options{
		SuggestLimit:     cfg.Search.SuggestLimit,
		BackdropInterval: cfg.Server.BackdropInterval,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		httpServer := web.NewHTTPServer(cfg.Server.Addr, srv.Handler())
		return web.ListenAndRun(gctx, httpServer, logger, cfg.Server.ShutdownTimeout, srv.StopStreams)
	})

	if (serveWatch || cfg.Server.Watch) && src.memory != nil && cfg.Seed != "" && !remote.IsURL(cfg.Seed) {
		g.Go(func() error {
			return catalog.WatchSeed(gctx, cfg.Seed, logger, func(seed *catalog.Seed) {
				src.memory.Replace(seed.Catalogs)
				rebuildIndex(gctx, idx, src)
			})
		})
	} else if serveWatch {
		logger.Warn("--watch needs the memory driver and a local seed file, ignoring")
	}

	conn, err := dialBroker()
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
		g.Go(func() error {
			return messaging.Listen(gctx, conn, cfg.Messaging.Prefix, logger, func(ctx context.Context, c messaging.Change) error {
				logger.Info("catalog changed", zap.String("change", c.ID), zap.Strings("catalogs", c.Catalogs))
				rebuildIndex(ctx, idx, src)
				return nil
			})
		})
	}

	return g.Wait()
}

func rebuildIndex(ctx context.Context, idx *search.Index, src *catalogSource) {
	names, err := src.names(ctx)
	if err != nil {
		logger.Warn("list catalogs", zap.Error(err))
		return
	}
	n, err := idx.Rebuild(ctx, src, names)
	if err != nil {
		logger.Warn("rebuild suggestions", zap.Error(err))
		return
	}
	logger.Info("suggestions rebuilt", zap.Int("items", n))
}
