package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvision/internal/amqp"
	"finvision/internal/core"
	"finvision/internal/sheets/memory"
)

type failingMirror struct{ calls int }

func (f *failingMirror) AppendTransaction(context.Context, core.Transaction) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func sampleMessage() *amqp.TransactionAppendedMessage {
	return amqp.NewTransactionAppendedMessage(core.Transaction{
		Date:        core.NewDate(2024, 4, 2),
		Type:        core.Expense,
		Category:    core.Entertainment,
		Amount:      core.Money{Cents: 1999},
		Description: "cinema",
	})
}

func TestHandleMessageMirrorsOnce(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewMirrorWorker(mirror)
	msg := sampleMessage()

	require.NoError(t, w.HandleMessage(ctx, msg))
	require.NoError(t, w.HandleMessage(ctx, msg))

	rows := mirror.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "cinema", rows[0][4])
	assert.Equal(t, -19.99, rows[0][3])
	assert.Equal(t, 1, w.Processed())
}

func TestHandleMessageDropsInvalid(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror)
	msg := sampleMessage()
	msg.Category = "Lottery"

	require.NoError(t, w.HandleMessage(context.Background(), msg))
	assert.Empty(t, mirror.Rows())
	assert.Equal(t, 0, w.Processed())
}

func TestHandleMessageReturnsMirrorError(t *testing.T) {
	mirror := &failingMirror{}
	w := NewMirrorWorker(mirror)
	msg := sampleMessage()

	err := w.HandleMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	// a failed message is retried on redelivery
	require.Error(t, w.HandleMessage(context.Background(), msg))
	assert.Equal(t, 2, mirror.calls)
}
