package sheets

import (
	"context"

	"finvision/internal/core"
)

// Header is the first row of the mirror sheet.
var Header = []any{"Date", "Type", "Category", "Amount", "Description"}

// Ports for outbound adapters.
type (
	// Mirror receives a copy of every saved transaction. It is never read
	// back by the dashboard.
	Mirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

// Row renders tx as a sheet row. The amount is signed, like the ledger file.
func Row(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		string(tx.Type),
		string(tx.Category),
		tx.Signed().Units(),
		tx.Description,
	}
}
