package cli

import (
	"github.com/spf13/cobra"

	"orb-trader/internal/clock"
	"orb-trader/internal/engine"
	"orb-trader/internal/exec"
	"orb-trader/internal/feed"
	"orb-trader/internal/models"
	"orb-trader/internal/store"
	"orb-trader/pkg/utils"
)

func newReplayCmd(app *App) *cobra.Command {
	var journal bool

	cmd := &cobra.Command{
		Use:   "replay <tick-file.csv>",
		Short: "Replay a recorded tick file through the engine",
		Long: `Replays a CSV tick file (columns: symbol, price, volume, timestamp)
through the full decision pipeline at maximum speed. Time is driven
entirely by the recorded timestamps, so a whole session replays in
seconds. Results are printed and, with --journal, persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)

			src, err := feed.NewReplayFeed(args[0])
			if err != nil {
				return err
			}

			open, squareOff, err := app.Config.SessionTimes(src.First().In(utils.IndiaLocation), utils.IndiaLocation)
			if err != nil {
				return err
			}

			// The engine's wall clock follows the replay stream.
			clk := clock.NewFakeClock(src.First())

			executor := exec.NewPaperExecutor(app.Logger)
			var audit engine.AuditSink = nopAudit{}
			if journal && app.Journal != nil {
				audit = store.NewAuditWriter(app.Journal, app.Logger)
			}

			eng := engine.NewEngine(app.Config, app.Instruments(), clk, app.Logger, executor, audit,
				engine.Options{Paper: true, DisableTimer: true, BlockingIngest: true})

			ctx := cmd.Context()
			if err := eng.StartSession(ctx, open, squareOff); err != nil {
				return err
			}

			err = src.Start(ctx, func(t models.Tick) {
				clk.Set(t.Timestamp)
				eng.OnTick(t)
			})
			if err != nil {
				eng.Stop()
				return err
			}

			eng.ForceCloseSession()
			eng.Stop()

			trades, pnl := eng.DailyStats()
			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"ticks":  src.Len(),
					"trades": trades,
					"pnl":    pnl,
				})
			}
			out.Printf("Replayed %d ticks (%s to %s)\n", src.Len(),
				src.First().Format("15:04:05"), src.Last().Format("15:04:05"))
			out.Printf("Trades: %d, P&L %s\n", trades, out.PnL(pnl))
			return nil
		},
	}

	cmd.Flags().BoolVar(&journal, "journal", false, "persist replayed trades to the journal")
	return cmd
}
