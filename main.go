package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/data"
	btcsv "github.com/openquant/backtester/data/csv"
	"github.com/openquant/backtester/engine"
	"github.com/openquant/backtester/report"
	"github.com/openquant/backtester/statistics"
)

func main() {
	app := &cli.App{
		Name:  "backtester",
		Usage: "event-driven lattice backtester",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a JSON backtest config",
				Value:   "config.json",
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "override configured verbosity (none|warning|debug|transactions|info)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the configured backtest and print the final portfolio",
				Action: runBacktest,
			},
			{
				Name:  "export",
				Usage: "run with zero latencies and write the full lattice history as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "path for the JSON export",
						Value:   "lattice.json",
					},
				},
				Action: exportLattice,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSettings(c *cli.Context) (*engine.Settings, error) {
	cfg, err := config.ReadConfigFromFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("verbosity"); v != "" {
		if _, err := common.VerbosityFromString(v); err != nil {
			return nil, err
		}
		cfg.Verbosity = v
	}
	if cfg.CSVData == nil || len(cfg.CSVData.Paths) == 0 {
		return nil, fmt.Errorf("config declares no csv data sources")
	}

	opts := btcsv.Options{
		DatetimeColumn: common.FieldID(cfg.Columns.Datetime),
		DatetimeLayout: cfg.CSVData.DatetimeLayout,
	}
	if cfg.CSVData.Delimiter != "" {
		opts.Comma = rune(cfg.CSVData.Delimiter[0])
	}
	readers := make(map[common.AssetID]data.Handler, len(cfg.CSVData.Paths))
	for asset, paths := range cfg.CSVData.Paths {
		r, err := btcsv.NewReader(common.AssetID(asset), paths, opts)
		if err != nil {
			return nil, fmt.Errorf("building reader for %q: %w", asset, err)
		}
		readers[common.AssetID(asset)] = r
	}
	return &engine.Settings{Config: cfg, DataReaders: readers}, nil
}

func runBacktest(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	stat := statistics.New()
	stat.Attach(s)

	bt, err := engine.New(s)
	if err != nil {
		return err
	}
	if err := bt.Run(); err != nil {
		return err
	}

	stat.PrintResult(os.Stdout)
	for asset, size := range bt.Portfolio().Holdings() {
		fmt.Printf("position:        %s %s\n", asset, size)
	}
	return nil
}

func exportLattice(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	d, err := report.Export(s)
	if err != nil {
		return err
	}
	out := c.String("output")
	if err := d.WriteFile(out); err != nil {
		return err
	}
	fmt.Printf("wrote %d bars to %s\n", len(d.Bars), out)
	return nil
}
