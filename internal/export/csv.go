// Package export renders cash-closure history as a downloadable CSV.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// closureHeaders is the fixed, contractual column set of the export.
var closureHeaders = []string{
	"Fecha",
	"Cerrado Por",
	"Hora de Cierre",
	"Total USD",
	"Total Bs.",
	"Total Pedidos",
	"Completados",
	"Cancelados",
	"Tasa Éxito (%)",
	"Tasa Promedio",
	"Notas",
}

// WriteClosuresCSV emits one row per closure. Every field is
// double-quoted, fields are comma-separated and rows newline-terminated;
// embedded quotes are doubled.
func WriteClosuresCSV(w io.Writer, closures []domain.CashClosure) error {
	if err := writeRow(w, closureHeaders); err != nil {
		return err
	}
	for _, c := range closures {
		row := []string{
			c.ClosureDate,
			c.ClosedByName,
			c.ClosedAt.Format("02/01/2006 15:04:05"),
			strconv.FormatFloat(c.TotalSalesUSD, 'f', 2, 64),
			strconv.FormatFloat(c.TotalSalesBS, 'f', 2, 64),
			strconv.Itoa(c.TotalOrders),
			strconv.Itoa(c.CompletedOrders),
			strconv.Itoa(c.CancelledOrders),
			strconv.FormatFloat(c.SuccessRate(), 'f', 1, 64),
			strconv.FormatFloat(c.ExchangeRateAvg, 'f', 2, 64),
			c.Notes,
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	if _, err := fmt.Fprintln(w, strings.Join(quoted, ",")); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}
