package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportCSV writes an account's transaction history to w, most recent
// first, mirroring ListTransactions order. Prices and amounts are written at
// display precision.
func ExportCSV(ctx context.Context, w io.Writer, store Store, accountID int64) error {
	recs, err := store.ListTransactions(ctx, accountID)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}

	cw := csv.NewWriter(w)

	header := []string{"id", "symbol", "side", "price", "quantity", "total_amount", "timestamp"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range recs {
		err := cw.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.Symbol,
			string(r.Side),
			r.Price.StringFixed(CurrencyPrecision),
			strconv.FormatInt(r.Quantity, 10),
			r.TotalAmount.StringFixed(CurrencyPrecision),
			r.Timestamp.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
