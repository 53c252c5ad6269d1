package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"isochrone/internal/handler"
	"isochrone/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the feed and start the HTTP server",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port (overrides ISOCHRONE_PORT)")
}

var servePort int

func serve(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg := resolvedConfig()
	if servePort != 0 {
		cfg.Port = servePort
	}

	eng, err := loadEngine(cfg, logger)
	if err != nil {
		return err
	}

	h := handler.New(eng.search, eng.resolver, cfg, logger)
	srv := server.New(cfg, h, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		os.Exit(0)
	}()

	return srv.ListenAndServe()
}
