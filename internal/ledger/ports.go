// Package ledger defines the storage ports for the transaction ledger and
// the messages shown when stored history cannot be used.
package ledger

import (
	"context"

	"finvision/internal/core"
)

// Notices shown to the user when a load degrades to an empty ledger.
const (
	NoticeNoHistory  = "No transaction history found. Add a transaction first!"
	NoticeUnreadable = "Transaction history could not be read; starting from an empty ledger. The unreadable file is kept aside on the next save."
)

// Snapshot is the result of a full ledger load.
type Snapshot struct {
	Ledger core.Ledger
	// Notice is a user-facing informational message, empty when the load
	// found usable history.
	Notice string
}

// Ports for storage adapters.
type (
	Loader interface {
		// Load reads the whole ledger. Missing or unreadable history yields
		// an empty ledger and a notice, not an error.
		Load(ctx context.Context) (Snapshot, error)
	}

	Appender interface {
		// AppendAndSave persists tx on top of the rows currently stored and
		// returns the resulting ledger. l is the caller's earlier snapshot;
		// it is returned unchanged on failure and never used as the base,
		// so concurrent appends cannot drop each other's rows.
		AppendAndSave(ctx context.Context, l core.Ledger, tx core.Transaction) (core.Ledger, error)
	}

	Store interface {
		Loader
		Appender
	}
)
