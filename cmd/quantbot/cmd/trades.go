package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantbot/journal"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List recorded trades from the SQLite journal",
	Long: `Print the most recent trades from the journal database, newest first.

Example:
  quantbot trades --db ./quantbot.db --limit 20`,
	RunE: runTrades,
}

var (
	tradesDBPath string
	tradesLimit  int
)

func init() {
	rootCmd.AddCommand(tradesCmd)

	tradesCmd.Flags().StringVar(&tradesDBPath, "db", "./quantbot.db", "path to the journal database")
	tradesCmd.Flags().IntVar(&tradesLimit, "limit", 20, "maximum number of trades to list")
}

func runTrades(cmd *cobra.Command, args []string) error {
	s, err := journal.NewSQLite(tradesDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer s.Close()

	trades, err := s.Trades(tradesLimit)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Println("No trades recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSYMBOL\tSIDE\tQTY\tPRICE\tTYPE\tSTATUS\tORDER")
	for _, t := range trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
			t.Time.Format(time.RFC3339), t.Symbol, t.Side, t.Quantity,
			t.Price, t.OrderType, t.Status, t.OrderID)
	}
	return w.Flush()
}
