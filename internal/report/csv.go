// Package report renders pricing results for downstream consumers.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stashworks/appraise/internal/model"
)

// UnknownPrice is rendered where no price could be resolved.
const UnknownPrice = "unknown"

// WriteCSV writes one row per priced item plus a trailing grand-total row.
// Unresolved prices render as "unknown"; the grand total sums only resolved
// rows.
func WriteCSV(w io.Writer, rows []model.PricedItem) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"item", "category", "quantity", "unit_price", "total"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		unitPrice := UnknownPrice
		total := UnknownPrice
		if row.UnitPrice != nil {
			unitPrice = row.UnitPrice.String()
			total = row.ExtendedTotal.String()
		}

		record := []string{
			row.Name,
			row.Category,
			strconv.Itoa(row.Quantity),
			unitPrice,
			total,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", row.Name, err)
		}
	}

	grandTotal := model.GrandTotal(rows)
	if err := cw.Write([]string{"grand total", "", "", "", grandTotal.String()}); err != nil {
		return fmt.Errorf("failed to write grand total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
