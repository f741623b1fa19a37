// Package main provides fitcsv, a command line front end to the curve fitter
// for series stored in CSV files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/ingest"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
	"github.com/soltixdb/curvecast/internal/services"
	"github.com/soltixdb/curvecast/internal/utils"
)

var (
	configPath  string
	dateColumn  string
	valueColumn string
	dateFormat  string
	delimiter   string
	integer     bool
	verbose     bool

	fitCurve    string
	fitMode     string
	fitFrom     string
	fitTo       string
	fitDayZero  string
	fitForecast bool
	fitOffsets  []int

	extremaWindow int

	deriveOps []string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fitcsv",
		Short:         "Fit growth curves to daily series stored in CSV files",
		Version:       utils.Version,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "configuration file for fitter and forecast defaults")
	flags.StringVar(&dateColumn, "date-column", "date", "header of the date column")
	flags.StringVar(&valueColumn, "value-column", "value", "header of the value column")
	flags.StringVar(&dateFormat, "date-format", "2006-01-02", "Go layout of the date column")
	flags.StringVar(&delimiter, "delimiter", ",", "field delimiter")
	flags.BoolVar(&integer, "integer", false, "treat values as whole counts")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log fit progress to stderr")

	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newExtremaCmd())
	rootCmd.AddCommand(newDeriveCmd())

	return rootCmd
}

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit FILE",
		Short: "Fit a curve, or run a full forecast with --forecast",
		Args:  cobra.ExactArgs(1),
		RunE:  runFitCmd,
	}
	cmd.Flags().StringVar(&fitCurve, "curve", "", "curve kind, or auto with --forecast (default from config)")
	cmd.Flags().StringVar(&fitMode, "mode", "", "cumulative or daily (default from config)")
	cmd.Flags().StringVar(&fitFrom, "from", "", "first day of the fit window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&fitTo, "to", "", "last day of the fit window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&fitDayZero, "day-zero", "", "curve origin (default: series start)")
	cmd.Flags().BoolVar(&fitForecast, "forecast", false, "add peak, checkpoints and accuracy")
	cmd.Flags().IntSliceVar(&fitOffsets, "checkpoints", nil, "checkpoint offsets in days after the fit window")
	return cmd
}

func newExtremaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extrema FILE",
		Short: "List local extrema and monotone segments",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtremaCmd,
	}
	cmd.Flags().IntVar(&extremaWindow, "window", 0, "sample window in days (default from config)")
	return cmd
}

func newDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive FILE",
		Short: "Apply series operations in order, e.g. --op deltas --op moving_average:7",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeriveCmd,
	}
	cmd.Flags().StringArrayVar(&deriveOps, "op", nil, "operation as name[:argument]; repeatable")
	return cmd
}

func runFitCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, series, err := setup(args[0])
	if err != nil {
		return err
	}
	svc := services.NewForecastService(logger, cfg.Fitter, cfg.Forecast, nil)

	fit := models.FitRequest{
		Series:  series,
		Curve:   fitCurve,
		Mode:    fitMode,
		DayZero: fitDayZero,
	}
	if fitFrom != "" || fitTo != "" {
		fit.Window = &models.WindowPayload{From: fitFrom, To: fitTo}
	}

	ctx := context.Background()
	if !fitForecast {
		resp, err := svc.Fit(ctx, &fit)
		if err != nil {
			return describe(err)
		}
		return printJSON(cmd, resp)
	}

	req := models.ForecastRequest{FitRequest: fit, NoCache: true}
	if cmd.Flags().Changed("checkpoints") {
		req.CheckpointOffsets = fitOffsets
	}
	resp, err := svc.Execute(ctx, &req)
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, resp)
}

func runExtremaCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, series, err := setup(args[0])
	if err != nil {
		return err
	}
	svc := services.NewExtremaService(logger, cfg.Extrema)

	resp, err := svc.Find(context.Background(), &models.ExtremaRequest{
		Series:       series,
		SampleWindow: extremaWindow,
	})
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, resp)
}

func runDeriveCmd(cmd *cobra.Command, args []string) error {
	if len(deriveOps) == 0 {
		return fmt.Errorf("at least one --op is required")
	}
	ops := make([]models.SeriesOperation, len(deriveOps))
	for i, input := range deriveOps {
		op, err := parseOperation(input)
		if err != nil {
			return err
		}
		ops[i] = op
	}

	_, logger, series, err := setup(args[0])
	if err != nil {
		return err
	}
	svc := services.NewSeriesService(logger)

	resp, err := svc.Derive(context.Background(), &models.DeriveRequest{Series: series, Operations: ops})
	if err != nil {
		return describe(err)
	}
	return printJSON(cmd, resp)
}

// parseOperation reads name[:argument]. The argument is the lag of deltas
// and growth_rate, the window of moving_average and moving_sum, the days of
// shift, the start of cumulative_sum, and from..to for slice.
func parseOperation(input string) (models.SeriesOperation, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(input), ":")
	op := models.SeriesOperation{Op: name}
	if !hasArg {
		return op, nil
	}

	atoi := func() (int, error) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, fmt.Errorf("%s: argument %q is not an integer", name, arg)
		}
		return n, nil
	}

	var err error
	switch name {
	case "deltas", "growth_rate":
		op.Lag, err = atoi()
	case "moving_average", "moving_sum":
		op.Window, err = atoi()
	case "shift":
		op.Days, err = atoi()
	case "cumulative_sum":
		op.Since = arg
	case "slice":
		from, to, ok := strings.Cut(arg, "..")
		if !ok {
			return op, fmt.Errorf("slice: expected FROM..TO, got %q", arg)
		}
		op.From, op.To = from, to
	default:
		return op, fmt.Errorf("%s takes no argument", name)
	}
	return op, err
}

// setup loads configuration, builds a logger and reads the CSV file
func setup(path string) (*config.Config, *logging.Logger, models.SeriesPayload, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, models.SeriesPayload{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	logger := logging.NewNop()
	if verbose {
		logger = logging.NewWithWriter(os.Stderr, zerolog.DebugLevel)
	}

	comma, size := utf8.DecodeRuneInString(delimiter)
	if comma == utf8.RuneError || size != len(delimiter) {
		return nil, nil, models.SeriesPayload{}, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}

	series, err := ingest.LoadCSVFile(path, ingest.CSVOptions{
		DateColumn:  dateColumn,
		ValueColumn: valueColumn,
		DateFormat:  dateFormat,
		Comma:       comma,
		Integer:     integer,
	})
	if err != nil {
		return nil, nil, models.SeriesPayload{}, err
	}
	return cfg, logger, models.NewSeriesPayload(series), nil
}

// describe prefixes service errors with their code
func describe(err error) error {
	if svcErr, ok := err.(*services.ServiceError); ok {
		return fmt.Errorf("%s: %s", svcErr.Code, svcErr.Message)
	}
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
