// Package export renders the journal as a flat tabular projection for
// reporting collaborators. No core logic lives here.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/internal/domain"
)

// Header is the column set of the journal export, one row per trade.
var Header = []string{
	"Date", "EntryDate", "ExitDate", "Side", "Status", "Contract",
	"Quantity", "Entry", "Exit", "Return", "Commission", "Currency",
}

// WriteCSV writes priced trades as CSV. Money columns are rounded to cents;
// prices keep full precision.
func WriteCSV(w io.Writer, trades []domain.Trade, currency string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			t.ExitTime.Format("2006-01-02"),
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			string(t.Side),
			string(t.Status),
			t.Contract,
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			money(t.NetProfit),
			money(t.TotalCommission),
			currency,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the export to a file, creating or truncating it.
func WriteFile(path string, trades []domain.Trade, currency string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, trades, currency)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
