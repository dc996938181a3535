package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/halcyonlab/halcyon/examples/trailhold"
	"github.com/halcyonlab/halcyon/internal/data"
	engine "github.com/halcyonlab/halcyon/internal/engine/engine_v1"
	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/execution"
	"github.com/halcyonlab/halcyon/internal/fees"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/sink"
	"github.com/halcyonlab/halcyon/internal/types"
)

// tradingAction wires the engine against live exchange data and runs until
// interrupted. Paper mode keeps the live data feed but fills orders on the
// simulated venue.
func tradingAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	outputDir := cmd.String("output")
	paper := cmd.Bool("paper")
	pctSL := cmd.Float("stop-loss")
	pctTP := cmd.Float("take-profit")

	apiKey := os.Getenv("BINANCE_API_KEY")
	secretKey := os.Getenv("BINANCE_SECRET_KEY")

	if !paper && (apiKey == "" || secretKey == "") {
		return fmt.Errorf("live order placement requires BINANCE_API_KEY and BINANCE_SECRET_KEY")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseConfig(string(content))
	if err != nil {
		return err
	}

	lg, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Stop cleanly on Ctrl-C or SIGTERM; the engine writes its report on the
	// way out.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := events.NewQueue()

	api := data.NewBinanceMarketAPI(apiKey, secretKey)
	handler := data.NewLiveHandler(ctx, queue, api, config.Symbols, config.Interval, data.DefaultBarWindow, lg)

	results, err := sink.NewDuckDBSink(filepath.Join(outputDir, "results.duckdb"), lg)
	if err != nil {
		return err
	}
	defer results.Close()

	eng := engine.NewEngineV1(queue, lg)
	if err := eng.Initialize(string(content)); err != nil {
		return err
	}

	if err := eng.SetDataHandler(handler); err != nil {
		return err
	}

	if err := eng.SetStrategy(trailhold.New(queue, handler, pctSL, pctTP)); err != nil {
		return err
	}

	var executionHandler execution.Handler
	if paper {
		feeModel := fees.GetFeeModel(config.FeeSchedule)
		executionHandler = execution.NewSimulatedExecutionHandler(queue, handler, feeModel, lg)
	} else {
		executionHandler = execution.NewBinanceExecutionHandler(ctx, queue, execution.NewBinanceTradeAPI(apiKey, secretKey), lg)
	}

	if err := eng.SetExecutionHandler(executionHandler); err != nil {
		return err
	}

	if err := eng.SetSink(results); err != nil {
		return err
	}

	if err := eng.Run(ctx); err != nil {
		return err
	}

	stats, err := eng.Stats()
	if err != nil {
		return err
	}

	if err := types.WriteSummaryStats(filepath.Join(outputDir, "summary.yaml"), stats); err != nil {
		return err
	}

	return results.Export(outputDir)
}

func main() {
	cmd := &cli.Command{
		Name:  "trading",
		Usage: "Run the engine against live exchange data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine YAML config",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory for the results database, exports, and summary report",
				Value:    "results",
				Required: false,
			},
			&cli.BoolFlag{
				Name:  "paper",
				Usage: "Fill orders on the simulated venue instead of the exchange",
				Value: true,
			},
			&cli.FloatFlag{
				Name:  "stop-loss",
				Usage: "Trailing stop-loss fraction for the demo strategy",
				Value: 0.02,
			},
			&cli.FloatFlag{
				Name:  "take-profit",
				Usage: "Take-profit fraction that arms the trailing stop",
				Value: 0.01,
			},
		},
		Action: tradingAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
