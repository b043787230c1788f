package main

import (
	"context"
	"fmt"
	"io"

	"github.com/TrevorS/clusterkit/internal/config"
	"github.com/TrevorS/clusterkit/internal/dataset"
	"github.com/TrevorS/clusterkit/internal/logging"
	"github.com/urfave/cli/v3"
)

const envPrefix = "CLUSTERKIT_"

// app carries the state shared by all commands once the root Before hook has
// resolved configuration.
type app struct {
	out io.Writer
	cfg *config.Config
}

// Flag names shared between commands.
const (
	configFlag   = "config"
	formatFlag   = "format"
	logLevelFlag = "log-level"
	debugFlag    = "debug"
	workersFlag  = "workers"
	headerFlag   = "header"
	columnsFlag  = "columns"
	delimFlag    = "delimiter"
	seedFlag     = "seed"
	nInitFlag    = "n-init"
	maxKFlag     = "max-k"
	methodFlag   = "method"
	noPlotFlag   = "no-plot"
	outFlagName  = "out"
)

// Flags carry parse state, so every app gets fresh instances.

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "Path to a YAML file with default settings",
			Sources: cli.EnvVars(envPrefix + "CONFIG"),
		},
		&cli.StringFlag{
			Name:    formatFlag,
			Usage:   "Output format [json, yaml]",
			Sources: cli.EnvVars(envPrefix + "FORMAT"),
		},
		&cli.StringFlag{
			Name:    logLevelFlag,
			Usage:   "Log level [debug, info, warn, error]",
			Sources: cli.EnvVars(envPrefix + "LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:  debugFlag,
			Usage: "Prints verbose logs (shortcut for --log-level debug)",
		},
		&cli.IntFlag{
			Name:    workersFlag,
			Usage:   "Goroutines used by parallel stages (0 = all CPUs)",
			Sources: cli.EnvVars(envPrefix + "WORKERS"),
		},
	}
}

// dataFlags returns the CSV input flags followed by extra.
func dataFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:  headerFlag,
			Usage: "Skip the first CSV record",
		},
		&cli.StringFlag{
			Name:  columnsFlag,
			Usage: "Comma-separated zero-based columns to use (default: all)",
		},
		&cli.StringFlag{
			Name:    delimFlag,
			Aliases: []string{"d"},
			Usage:   "CSV field delimiter, a single character or \"tab\"",
			Value:   ",",
		},
	}, extra...)
}

func kmeansFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:    seedFlag,
			Usage:   "K-Means random seed",
			Sources: cli.EnvVars(envPrefix + "SEED"),
		},
		&cli.IntFlag{
			Name:  nInitFlag,
			Usage: "Number of K-Means initializations",
		},
	}
}

func maxKFlagDef() cli.Flag {
	return &cli.IntFlag{Name: maxKFlag, Usage: "Largest number of clusters to try"}
}

func methodFlagDef() cli.Flag {
	return &cli.StringFlag{
		Name:  methodFlag,
		Usage: "Linkage method [single, complete, average, weighted, ward, centroid, median]",
	}
}

// plotFlags returns --out with a command-specific default and --no-plot.
func plotFlags(def string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    outFlagName,
			Aliases: []string{"o"},
			Usage:   "Plot file; the format follows the extension (png, svg, pdf)",
			Value:   def,
		},
		&cli.BoolFlag{
			Name:  noPlotFlag,
			Usage: "Skip writing the plot",
		},
	}
}

func newApp(out io.Writer) *cli.Command {
	a := &app{out: out, cfg: config.Default()}

	return &cli.Command{
		Name:    "clusterkit",
		Usage:   "Exploratory clustering diagnostics for CSV data",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Writer:  out,
		Flags:   rootFlags(),
		Before:  a.before,
		Commands: []*cli.Command{
			a.kmeansCmd(),
			a.elbowCmd(),
			a.silhouetteCmd(),
			a.dendrogramCmd(),
			a.optimalCmd(),
			a.cutCmd(),
			a.kdistanceCmd(),
			a.configCmd(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet(formatFlag) {
		cfg.Format = cmd.String(formatFlag)
	}
	if cmd.IsSet(logLevelFlag) {
		cfg.LogLevel = cmd.String(logLevelFlag)
	}
	if cmd.Bool(debugFlag) {
		cfg.LogLevel = "debug"
	}
	if cmd.IsSet(workersFlag) {
		cfg.Workers = cmd.Int(workersFlag)
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	logging.SetDefaultCLILogger(cfg.LogLevel)
	a.cfg = cfg
	return ctx, nil
}

// loadData reads the CSV file named by the first argument.
func (a *app) loadData(cmd *cli.Command) ([][]float64, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, fmt.Errorf("%s: input CSV file required (use - for stdin)", cmd.Name)
	}
	cols, err := dataset.ParseColumns(cmd.String(columnsFlag))
	if err != nil {
		return nil, err
	}
	comma, err := dataset.ParseDelimiter(cmd.String(delimFlag))
	if err != nil {
		return nil, err
	}
	return dataset.LoadFile(path, dataset.Options{
		Header:  cmd.Bool(headerFlag),
		Columns: cols,
		Comma:   comma,
	})
}

// intOr returns the flag value when set on the command line, else def.
func intOr(cmd *cli.Command, name string, def int) int {
	if cmd.IsSet(name) {
		return cmd.Int(name)
	}
	return def
}

// stringOr returns the flag value when set on the command line, else def.
func stringOr(cmd *cli.Command, name, def string) string {
	if cmd.IsSet(name) {
		return cmd.String(name)
	}
	return def
}
