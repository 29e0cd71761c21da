package memory

import (
	"context"
	"testing"

	"finvision/internal/core"
)

func TestMirrorAppend(t *testing.T) {
	m := New()

	ref, err := m.AppendTransaction(context.Background(), core.Transaction{
		Date:        core.NewDate(2024, 1, 2),
		Type:        core.Expense,
		Category:    core.Transport,
		Amount:      core.Money{Cents: 250},
		Description: "bus",
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := m.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0][3]; got != -2.5 {
		t.Fatalf("amount = %v, want -2.5", got)
	}

	if _, err := m.AppendTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(m.Rows()) != 1 {
		t.Fatalf("invalid transaction was mirrored")
	}
}
