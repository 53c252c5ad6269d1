package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"isochrone/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "isochrone",
	Short:        "Transit isochrone engine",
	Long:         "Computes reachability from an origin over a static transit schedule feed",
	SilenceUsage: true,
}

var feedPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&feedPath, "feed", "", "path to the GTFS schedule zip (overrides ISOCHRONE_FEED_PATH)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// resolvedConfig loads config.Config and applies the --feed override.
func resolvedConfig() *config.Config {
	cfg := config.Load()
	if feedPath != "" {
		cfg.FeedPath = feedPath
	}
	return cfg
}
