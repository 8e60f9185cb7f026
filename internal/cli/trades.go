package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"orb-trader/internal/store"
	"orb-trader/pkg/utils"
)

func newTradesCmd(app *App) *cobra.Command {
	var symbol string
	var limit int
	var today bool

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List journalled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Journal == nil {
				return fmt.Errorf("journal unavailable")
			}

			filter := store.TradeFilter{Symbol: symbol, Limit: limit}
			if today {
				now := time.Now().In(utils.IndiaLocation)
				filter.Since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, utils.IndiaLocation)
			}

			records, err := app.Journal.Trades(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(records)
			}
			if len(records) == 0 {
				out.Println("No trades found")
				return nil
			}

			out.Header(fmt.Sprintf("%-28s %-12s %-4s %8s %9s %9s %10s  %-13s %s",
				"ID", "SYMBOL", "SIDE", "QTY", "ENTRY", "EXIT", "P&L", "REASON", "HELD"))
			var total float64
			for _, r := range records {
				mode := ""
				if r.IsPaper {
					mode = " (paper)"
				}
				out.Printf("%-28s %-12s %-4s %8d %9.2f %9.2f %10s  %-13s %s%s\n",
					r.ID, r.Symbol, string(r.Side), r.Quantity, r.EntryPrice, r.ExitPrice,
					out.PnL(r.PnL), string(r.ExitReason), r.HoldDuration.Round(time.Second), mode)
				total += r.PnL
			}
			out.Printf("\nTotal: %d trade(s), P&L %s\n", len(records), out.PnL(total))
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	cmd.Flags().BoolVar(&today, "today", false, "only today's trades")
	return cmd
}
