package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"finvision/internal/core"
	"finvision/internal/ledger"
)

func TestMemoryStoreLoadAndAppend(t *testing.T) {
	ctx := context.Background()
	s := New()

	snap, err := s.Load(ctx)
	if err != nil || len(snap.Ledger) != 0 || snap.Notice != ledger.NoticeNoHistory {
		t.Fatalf("unexpected empty load: %+v err=%v", snap, err)
	}

	tx := core.Transaction{
		Date:        core.NewDate(2024, 1, 5),
		Type:        core.Expense,
		Category:    core.Food,
		Amount:      core.Money{Cents: 5000},
		Description: "lunch",
	}
	l, err := s.AppendAndSave(ctx, snap.Ledger, tx)
	if err != nil || len(l) != 1 {
		t.Fatalf("unexpected append: len=%d err=%v", len(l), err)
	}

	snap, err = s.Load(ctx)
	if err != nil || len(snap.Ledger) != 1 || snap.Notice != "" {
		t.Fatalf("unexpected reload: %+v err=%v", snap, err)
	}
	if snap.Ledger[0] != tx {
		t.Fatalf("stored %+v, want %+v", snap.Ledger[0], tx)
	}

	// the snapshot is a copy
	snap.Ledger[0].Description = "changed"
	again, _ := s.Load(ctx)
	if again.Ledger[0].Description != "lunch" {
		t.Fatalf("store aliased the returned ledger")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.AppendAndSave(context.Background(), nil, core.Transaction{Date: core.NewDate(2024, 1, 5), Type: core.Income, Category: core.Salary, Description: "zero"})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	snap, _ := s.Load(context.Background())
	if len(snap.Ledger) != 0 {
		t.Fatalf("rejected transaction was stored")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "seed.csv")
	content := "Date,Type,Category,Amount,Description\n2024-02-01,Income,Salary,1000.00,pay\n"
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	snap, err := NewFromFile(p).Load(context.Background())
	if err != nil || len(snap.Ledger) != 1 {
		t.Fatalf("unexpected seed: %+v err=%v", snap, err)
	}
	if got := snap.Ledger[0].Amount.Cents; got != 100000 {
		t.Fatalf("amount cents = %d", got)
	}

	missing, _ := NewFromFile(filepath.Join(dir, "nope.csv")).Load(context.Background())
	if len(missing.Ledger) != 0 {
		t.Fatalf("missing seed should give empty store")
	}
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := New()

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := s.Load(ctx)
			if err != nil {
				errs <- err
				return
			}
			tx := core.Transaction{
				Date:        core.NewDate(2024, 1, 5),
				Type:        core.Expense,
				Category:    core.Food,
				Amount:      core.Money{Cents: 100},
				Description: fmt.Sprintf("row %d", i),
			}
			if _, err := s.AppendAndSave(ctx, snap.Ledger, tx); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("append failed: %v", err)
	}

	snap, _ := s.Load(ctx)
	if len(snap.Ledger) != writers {
		t.Fatalf("stored %d rows, want %d", len(snap.Ledger), writers)
	}
}
