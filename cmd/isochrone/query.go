package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"isochrone/internal/calendar"
	"isochrone/internal/isochrone"
)

var queryCmd = &cobra.Command{
	Use:   "query <origin_lat> <origin_lon> <date>",
	Short: "Run one isochrone search against a loaded feed and print edge_times as JSON",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuery,
}

var (
	queryTStart          int
	queryBudget          int
	queryTransferPenalty int
)

func init() {
	queryCmd.Flags().IntVar(&queryTStart, "t-start", 0, "departure time in seconds since midnight (0 = use configured default)")
	queryCmd.Flags().IntVar(&queryBudget, "budget", 0, "time budget in seconds (0 = use configured default)")
	queryCmd.Flags().IntVar(&queryTransferPenalty, "transfer-penalty", 0, "transfer penalty in seconds (0 = use configured default)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg := resolvedConfig()

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid origin_lat: %w", err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid origin_lon: %w", err)
	}
	date := args[2]

	eng, err := loadEngine(cfg, logger)
	if err != nil {
		return err
	}

	tStart := cfg.DefaultTStart
	if queryTStart != 0 {
		tStart = queryTStart
	}
	budget := cfg.DefaultBudget
	if queryBudget != 0 {
		budget = queryBudget
	}
	penalty := cfg.DefaultTransferPenalty
	if queryTransferPenalty != 0 {
		penalty = queryTransferPenalty
	}

	result, err := eng.search.Run(context.Background(), isochrone.Request{
		OriginLat:       lat,
		OriginLon:       lon,
		Date:            date,
		TStart:          tStart,
		Budget:          budget,
		TransferPenalty: penalty,
	}, calendar.NewMemo(eng.resolver))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result.EdgeTimes)
}
