package cli

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"orb-trader/internal/config"
	"orb-trader/internal/logging"
	"orb-trader/internal/models"
	"orb-trader/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Journal store.Journal
}

// Instruments resolves the configured symbols into instrument records, in
// stable order.
func (a *App) Instruments() []models.Instrument {
	names := make([]string, 0, len(a.Config.Trading.Symbols))
	for name := range a.Config.Trading.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	instruments := make([]models.Instrument, 0, len(names))
	for _, name := range names {
		sc := a.Config.Trading.Symbols[name]
		instruments = append(instruments, models.Instrument{
			Symbol:   name,
			StepSize: sc.StepSize,
			Enabled:  sc.Enabled,
			Lots:     sc.Lots,
			LotSize:  sc.LotSize,
		})
	}
	return instruments
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "orbot.db")
	journal, err := store.NewSQLiteJournal(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open journal, trades will not be persisted")
	} else {
		app.Journal = journal
	}

	rootCmd := &cobra.Command{
		Use:   "orbot",
		Short: "Opening-range breakout trading engine for Indian index options",
		Long: `orbot captures the first candle of the session, arms breakout levels
above and below it, and manages option positions through a fixed exit
policy: stop-loss, target, partial-exit ladder, trailing stop and a
max-holding timeout, all under a daily risk governor.

Use 'orbot help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/orb-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newReplayCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := NewOutput(cmd)
			if out.IsJSON() {
				out.JSON(map[string]string{"version": Version})
				return
			}
			out.Printf("orbot %s\n", Version)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if out.IsJSON() {
				return out.JSON(app.Config)
			}

			rm := app.Config.Trading.RiskManagement
			out.Header("Risk")
			out.Printf("  stop loss       %.1f pts (ATR stop: %v, x%.2f, fallback %.1f)\n",
				rm.StopLossPoints, rm.UseATRStopLoss, rm.ATRMultiplier, rm.ATRFallback)
			target := rm.TargetPoints
			if target == 0 {
				out.Printf("  target          2x stop distance\n")
			} else {
				out.Printf("  target          %.1f pts\n", target)
			}
			out.Printf("  buffer          %.1f pts\n", rm.BreakoutBuffer)
			out.Printf("  max holding     %d min\n", rm.MaxHoldingMinutes)

			out.Header("Session")
			out.Printf("  open            %s + %d min capture\n",
				app.Config.Timing.MarketOpenTime, app.Config.Timing.FirstCandleMinutes)
			out.Printf("  square off      %s\n", app.Config.Timing.SquareOffTime)

			out.Header("Daily limits")
			out.Printf("  max trades      %d\n", app.Config.Monitoring.MaxDailyTrades)
			out.Printf("  loss floor      %.1f\n", app.Config.Monitoring.MaxDailyLoss)

			out.Header("Instruments")
			for _, inst := range app.Instruments() {
				state := "enabled"
				if !inst.Enabled {
					state = "disabled"
				}
				out.Printf("  %-12s %s, %d x %d\n", inst.Symbol, state, inst.Lots, inst.LotSize)
			}
			return nil
		},
	}
	return cmd
}
