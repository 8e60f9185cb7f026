package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"orb-trader/internal/clock"
	"orb-trader/internal/engine"
	"orb-trader/internal/exec"
	"orb-trader/internal/feed"
	"orb-trader/internal/models"
	"orb-trader/internal/store"
	"orb-trader/pkg/utils"
)

func newRunCmd(app *App) *cobra.Command {
	var immediate bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a paper trading session against the simulated feed",
		Long: `Runs one trading session in paper mode. Prices come from a seeded
random-walk simulator, intents go to a paper executor, and every trade
is journalled. Interrupting the session squares off open positions
before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			clk := clock.RealClock{}

			day := utils.NextTradingDay(clk.Now())
			open, squareOff, err := app.Config.SessionTimes(day, utils.IndiaLocation)
			if err != nil {
				return err
			}
			if immediate {
				// Anchor the session at the current instant; useful for
				// exercising the engine outside market hours.
				open = clk.Now()
				if !squareOff.After(open) {
					squareOff = open.Add(6 * time.Hour)
				}
			}

			simCfg := app.Config.Simulation
			src, err := feed.NewSimFeed(feed.SimFeedConfig{
				Seed:        simCfg.Seed,
				Interval:    time.Duration(simCfg.TickIntervalMs) * time.Millisecond,
				StartPrices: simCfg.StartPrices,
				Clock:       clk,
			})
			if err != nil {
				return err
			}

			executor := exec.NewPaperExecutor(app.Logger)
			var audit engine.AuditSink
			if app.Journal != nil {
				audit = store.NewAuditWriter(app.Journal, app.Logger)
			} else {
				audit = nopAudit{}
			}

			eng := engine.NewEngine(app.Config, app.Instruments(), clk, app.Logger, executor, audit, engine.Options{Paper: true})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := eng.StartSession(ctx, open, squareOff); err != nil {
				return err
			}

			out.Success("Paper session started (open %s, square off %s)",
				open.Format("15:04:05"), squareOff.Format("15:04:05"))

			feedDone := make(chan error, 1)
			go func() {
				feedDone <- src.Start(ctx, func(t models.Tick) { eng.OnTick(t) })
			}()

			select {
			case <-ctx.Done():
				out.Warn("Interrupt received, squaring off")
				eng.ForceCloseSession()
				time.Sleep(500 * time.Millisecond)
			case err := <-feedDone:
				if err != nil && !errors.Is(err, context.Canceled) {
					app.Logger.Error().Err(err).Msg("Feed stopped")
				}
			}

			eng.Stop()
			trades, pnl := eng.DailyStats()
			out.Printf("Session done: %d trade(s), P&L %s\n", trades, out.PnL(pnl))
			return nil
		},
	}

	cmd.Flags().BoolVar(&immediate, "now", false, "start the session immediately instead of at the configured open time")
	return cmd
}

// nopAudit discards audit output when no journal is available.
type nopAudit struct{}

func (nopAudit) RecordEvent(models.TradeEvent)  {}
func (nopAudit) RecordTrade(models.TradeRecord) {}
