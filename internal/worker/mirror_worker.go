package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"finvision/internal/amqp"
	"finvision/internal/sheets"
)

const (
	processedTTL     = 24 * time.Hour
	processedCleanup = time.Hour
)

// MirrorWorker copies announced transactions into the spreadsheet mirror.
type MirrorWorker struct {
	mirror    sheets.Mirror
	processed *cache.Cache
}

func NewMirrorWorker(mirror sheets.Mirror) *MirrorWorker {
	return &MirrorWorker{
		mirror:    mirror,
		processed: cache.New(processedTTL, processedCleanup),
	}
}

// HandleMessage appends the announced transaction to the mirror. Redelivered
// messages that were already mirrored are acknowledged without a second row.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionAppendedMessage) error {
	if ref, ok := w.processed.Get(msg.ID); ok && msg.ID != "" {
		slog.InfoContext(ctx, "Skipping already mirrored transaction",
			"message_id", msg.ID,
			"row_ref", ref)
		return nil
	}

	tx, err := msg.Transaction()
	if err != nil {
		// requeueing cannot fix a malformed payload
		slog.ErrorContext(ctx, "Dropping invalid transaction message",
			"message_id", msg.ID,
			"error", err)
		return nil
	}

	ref, err := w.mirror.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", msg.ID, err)
	}
	if msg.ID != "" {
		w.processed.Set(msg.ID, ref, cache.DefaultExpiration)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"message_id", msg.ID,
		"row_ref", ref,
		"published_at", msg.Timestamp)
	return nil
}

// Processed reports how many message IDs are remembered for deduplication.
func (w *MirrorWorker) Processed() int {
	return w.processed.ItemCount()
}
