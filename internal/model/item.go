package model

import "github.com/shopspring/decimal"

// InventoryItem is one pricing request: an item name, how many the player
// holds, and an optional category tag passed through to the report.
type InventoryItem struct {
	Name     string
	Category string
	Quantity int
}

// PricedItem is one output row of a pricing run. UnitPrice is nil when no
// catalog entry matched or the matched entry carried no price; ExtendedTotal
// is nil exactly when UnitPrice is nil. Never mutated after creation.
type PricedItem struct {
	UnitPrice     *decimal.Decimal
	ExtendedTotal *decimal.Decimal
	Name          string
	Category      string
	Quantity      int
}

// NewPricedItem builds the output row for an item, deriving the extended
// total from the unit price and quantity with exact decimal arithmetic.
func NewPricedItem(item InventoryItem, unitPrice *decimal.Decimal) PricedItem {
	priced := PricedItem{
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  item.Quantity,
		UnitPrice: unitPrice,
	}
	if unitPrice != nil {
		total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		priced.ExtendedTotal = &total
	}
	return priced
}

// Priced reports whether a unit price was resolved for this row.
func (p PricedItem) Priced() bool {
	return p.UnitPrice != nil
}

// GrandTotal sums the extended totals of all priced rows. Rows without a
// resolved price contribute nothing.
func GrandTotal(rows []PricedItem) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if row.ExtendedTotal != nil {
			total = total.Add(*row.ExtendedTotal)
		}
	}
	return total
}
