package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"AlgoReport/internal/di"
	"AlgoReport/internal/domain/models"
	"AlgoReport/pkg/config"
	"AlgoReport/pkg/util"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "runnow [SYMBOL ...]",
	Short: "Run the signal pipeline once and write a report",
	Example: "  runnow AAPL,MSFT btc --interval 1d\n" +
		"  runnow --symbols ETH/USDT --start 2024-01-01",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.String("config", "config/config.yaml", "config file path")
	f.StringSlice("symbols", nil, "comma separated symbols, merged with positional arguments")
	f.String("interval", "", "bar interval, defaults to the configured one")
	f.String("start", "", "range start (YYYY-MM-DD or RFC3339)")
	f.String("end", "", "range end (YYYY-MM-DD or RFC3339)")
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	symbols, _ := cmd.Flags().GetStringSlice("symbols")
	interval, _ := cmd.Flags().GetString("interval")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	params, err := runParams(interval, start, end)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	runner, cleanup, err := di.InitializeRunner(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, append(symbols, args...), params)
	if err != nil {
		return err
	}

	writeSummary(cmd.OutOrStdout(), summary)
	return nil
}

func runParams(interval, start, end string) (models.RunParams, error) {
	p := models.RunParams{Interval: interval}
	if start != "" {
		t, ok := util.ParseTime(start)
		if !ok {
			return p, fmt.Errorf("invalid --start %q", start)
		}
		p.Start = t
	}
	if end != "" {
		t, ok := util.ParseTime(end)
		if !ok {
			return p, fmt.Errorf("invalid --end %q", end)
		}
		p.End = t
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return p, fmt.Errorf("--end is before --start")
	}
	return p, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
