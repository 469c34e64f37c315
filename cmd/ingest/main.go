// Command ingest is the pitchdata acquisition CLI.
//
// Usage:
//
//	pitchdata fetch fpl-bootstrap --out data/raw/fpl_bootstrap.json
//	pitchdata fetch fpl-fixtures --out data/raw/fpl_fixtures.json
//	pitchdata fetch fpl-histories --limit 25 --out data/raw/fpl_histories_SAMPLE.parquet
//	pitchdata fetch understat-players --season 2023 --out data/raw/understat_players_2023.csv
//	pitchdata fetch understat-matches --season 2023 --out data/raw/understat_matches_2023.csv
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pitchdata/pitchdata/internal/config"
	"github.com/pitchdata/pitchdata/internal/dataset"
	"github.com/pitchdata/pitchdata/internal/provider/fpl"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
	"github.com/pitchdata/pitchdata/internal/tabular"
	"github.com/pitchdata/pitchdata/internal/writer"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "pitchdata",
		Short: "Football statistics acquisition CLI",
	}

	root.AddCommand(fetchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a dataset from FPL or Understat and write it to a file",
	}
	cmd.AddCommand(fplBootstrapCmd())
	cmd.AddCommand(fplFixturesCmd())
	cmd.AddCommand(fplHistoriesCmd())
	cmd.AddCommand(understatPlayersCmd())
	cmd.AddCommand(understatMatchesCmd())
	return cmd
}

// runFetch loads configuration, installs signal handling, and invokes the
// fetch body. Failures are logged and surface as a non-zero exit through
// cobra.
func runFetch(fn func(ctx context.Context, cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := fn(ctx, cfg); err != nil {
		logger.Error("Fetch failed", "error", err)
		return err
	}
	return nil
}

func fplBootstrapCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fpl-bootstrap",
		Short: "Fetch the FPL bootstrap-static payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(func(ctx context.Context, cfg *config.Config) error {
				c := fpl.NewClient(nil, cfg.FPLBaseURL, 0, fpl.WithTimeout(cfg.HTTPTimeout), fpl.WithLogger(logger))
				payload, err := c.Bootstrap(ctx)
				if err != nil {
					return err
				}
				return writeJSON(out, payload)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path (json)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func fplFixturesCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fpl-fixtures",
		Short: "Fetch the FPL fixtures list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(func(ctx context.Context, cfg *config.Config) error {
				c := fpl.NewClient(nil, cfg.FPLBaseURL, 0, fpl.WithTimeout(cfg.HTTPTimeout), fpl.WithLogger(logger))
				payload, err := c.Fixtures(ctx)
				if err != nil {
					return err
				}
				return writeJSON(out, payload)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path (json)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func fplHistoriesCmd() *cobra.Command {
	var (
		out   string
		limit int
		sleep float64
	)
	cmd := &cobra.Command{
		Use:   "fpl-histories",
		Short: "Build the combined per-player gameweek history table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(func(ctx context.Context, cfg *config.Config) error {
				pacing := cfg.FPLPacing
				if cmd.Flags().Changed("sleep") {
					pacing = time.Duration(sleep * float64(time.Second))
				}
				c := fpl.NewClient(nil, cfg.FPLBaseURL, 0, fpl.WithTimeout(cfg.HTTPTimeout), fpl.WithLogger(logger))

				start := time.Now()
				table, err := dataset.FPLPlayerGameweeks(ctx, c, limit, pacing)
				if err != nil {
					return err
				}
				logger.Info("Histories build finished",
					"rows", table.Len(), "duration", time.Since(start).Round(time.Second))
				return writeTable(out, table)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path (csv/parquet)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only build the first N players (0 = all)")
	cmd.Flags().Float64Var(&sleep, "sleep", config.DefaultFPLSleepSec, "Override sleep between history requests (seconds)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func understatPlayersCmd() *cobra.Command {
	return understatCmd(
		"understat-players",
		"Fetch Understat per-player season stats for a league",
		dataset.UnderstatPlayers,
	)
}

func understatMatchesCmd() *cobra.Command {
	return understatCmd(
		"understat-matches",
		"Fetch Understat fixtures and results for a league",
		dataset.UnderstatMatches,
	)
}

func understatCmd(
	use, short string,
	build func(ctx context.Context, c *understat.Client, league string, season int) (*tabular.Table, error),
) *cobra.Command {
	var (
		out    string
		league string
		season int
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(func(ctx context.Context, cfg *config.Config) error {
				c := understat.NewClient(nil, cfg.UnderstatBaseURL, cfg.UserAgent, cfg.UnderstatPacing, logger)

				start := time.Now()
				table, err := build(ctx, c, league, season)
				if err != nil {
					return err
				}
				logger.Info("Understat build finished",
					"league", league, "season", season,
					"rows", table.Len(), "duration", time.Since(start).Round(time.Second))
				return writeTable(out, table)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path (csv/parquet)")
	cmd.Flags().StringVar(&league, "league", config.DefaultLeague, "Understat league code")
	cmd.Flags().IntVar(&season, "season", config.DefaultSeason, "Season identifier (e.g. 2023)")
	cmd.MarkFlagRequired("out")
	return cmd
}

// --------------------------------------------------------------------------
// Output helpers
// --------------------------------------------------------------------------

func writeJSON(out string, payload interface{}) error {
	if err := writer.WriteJSON(out, payload); err != nil {
		return err
	}
	logger.Info("Wrote output", "path", out)
	return nil
}

func writeTable(out string, table *tabular.Table) error {
	if err := writer.WriteTable(out, table); err != nil {
		return err
	}
	logger.Info("Wrote output", "path", out, "rows", table.Len())
	return nil
}
