package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
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

// backtestAction loads the config and data, wires the engine, and runs the
// backtest to completion.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataDir := cmd.String("data")
	outputDir := cmd.String("output")
	pctSL := cmd.Float("stop-loss")
	pctTP := cmd.Float("take-profit")

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

	queue := events.NewQueue()

	series, totalBars, err := loadSeries(dataDir, config)
	if err != nil {
		return err
	}

	handler, err := data.NewHistoricHandler(queue, config.Symbols, series)
	if err != nil {
		return err
	}

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

	feeModel := fees.GetFeeModel(config.FeeSchedule)
	if err := eng.SetExecutionHandler(execution.NewSimulatedExecutionHandler(queue, handler, feeModel, lg)); err != nil {
		return err
	}

	if err := eng.SetSink(results); err != nil {
		return err
	}

	bar := progressbar.Default(int64(totalBars))
	eng.SetOnBarCallback(func(processed int) {
		bar.Add(1)
	})

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

// loadSeries loads one bar series per configured symbol from dataDir,
// clipped to the configured time window. Files are looked up as
// <symbol>.csv, then <symbol>.parquet.
func loadSeries(dataDir string, config engine.EngineV1Config) (map[string][]types.Bar, int, error) {
	series := make(map[string][]types.Bar, len(config.Symbols))
	total := 0

	for _, symbol := range config.Symbols {
		path := filepath.Join(dataDir, symbol+".csv")
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(dataDir, symbol+".parquet")
		}

		bars, err := data.LoadBars(path, symbol)
		if err != nil {
			return nil, 0, err
		}

		bars = clipBars(bars, config.StartTime.TakeOr(time.Time{}), config.EndTime.TakeOr(time.Time{}))
		series[symbol] = bars

		if total == 0 || len(bars) < total {
			total = len(bars)
		}
	}

	return series, total, nil
}

func clipBars(bars []types.Bar, start, end time.Time) []types.Bar {
	clipped := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if !start.IsZero() && bar.Time.Before(start) {
			continue
		}

		if !end.IsZero() && bar.Time.After(end) {
			continue
		}

		clipped = append(clipped, bar)
	}

	return clipped
}

// schemaAction prints the JSON schema of the engine config.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := engine.EmptyConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run an event-driven backtest over historical bar data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine YAML config",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Directory holding <symbol>.csv or <symbol>.parquet bar files",
				Value:    "data",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory for the results database, exports, and summary report",
				Value:    "results",
				Required: false,
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
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the engine config",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
