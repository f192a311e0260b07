package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/catalogue-search/internal/export"
	"github.com/joseph-ayodele/catalogue-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search, upload, the HTML page, health and metrics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	svc, err := a.ingestService(ctx)
	if err != nil {
		return err
	}
	pipeline := a.searchPipeline()

	srv := server.New(server.Deps{
		Searcher: pipeline,
		Uploader: svc,
		Exporter: export.NewService(pipeline, logger),
		Store:    a.store,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx, cfg.Server.HTTPAddr) })
	if cfg.Server.GRPCAddr != "" {
		g.Go(func() error {
			return server.NewGRPCHealth(a.store, logger).ListenAndServe(gctx, cfg.Server.GRPCAddr)
		})
	}
	return g.Wait()
}
