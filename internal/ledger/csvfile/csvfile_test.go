package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finvision/internal/core"
	"finvision/internal/ledger"
)

func newTx(t *testing.T, date, typ, cat, amount, desc string) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(core.TransactionInput{
		Date: date, Type: typ, Category: cat, Amount: amount, Description: desc,
	})
	require.NoError(t, err)
	return tx
}

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "finance_data.csv"))

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Ledger)
	assert.Equal(t, ledger.NoticeNoHistory, snap.Notice)
	assert.Equal(t, core.Totals{}, core.Summarize(snap.Ledger))
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))

	snap, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Ledger)
	assert.Equal(t, ledger.NoticeNoHistory, snap.Notice)
}

func TestLoadHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Type,Category,Amount,Description\n"), 0644))

	snap, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Ledger)
	assert.Empty(t, snap.Notice)
}

func TestLoadCorruptFile(t *testing.T) {
	cases := map[string]string{
		"wrong header":       "When,What\n2024-01-01,x\n",
		"bad amount":         "Date,Type,Category,Amount,Description\n2024-01-01,Income,Salary,lots,pay\n",
		"sign mismatch":      "Date,Type,Category,Amount,Description\n2024-01-01,Expense,Food,50.0,lunch\n",
		"unknown category":   "Date,Type,Category,Amount,Description\n2024-01-01,Expense,Pets,-5,food\n",
		"missing field":      "Date,Type,Category,Amount,Description\n2024-01-01,Expense,Food,-5\n",
		"unterminated quote": "Date,Type,Category,Amount,Description\n2024-01-01,Expense,Food,-5,\"oops\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "finance_data.csv")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			snap, err := New(path).Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, snap.Ledger)
			assert.Equal(t, ledger.NoticeUnreadable, snap.Notice)
		})
	}
}

func TestLoadOriginalFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	content := "Date,Type,Category,Amount,Description\n" +
		"2024-01-05,Income,Salary,100.0,pay\n" +
		"2024-01-20,Expense,Educational Fees,-30.0,\"books, pens\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	snap, err := New(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Ledger, 2)
	assert.Empty(t, snap.Notice)
	assert.Equal(t, int64(-3000), snap.Ledger[1].Signed().Cents)
	assert.Equal(t, core.EducationalFees, snap.Ledger[1].Category)
	assert.Equal(t, "books, pens", snap.Ledger[1].Description)
}

func TestAppendAndSaveSignsAmounts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	s := New(path)

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	l, err := s.AppendAndSave(ctx, snap.Ledger, newTx(t, "2024-01-05", "Expense", "Food", "50", "lunch"))
	require.NoError(t, err)
	l, err = s.AppendAndSave(ctx, l, newTx(t, "2024-01-06", "Income", "Salary", "50", "refund"))
	require.NoError(t, err)
	assert.Len(t, l, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Date,Type,Category,Amount,Description\n"+
			"2024-01-05,Expense,Food,-50.00,lunch\n"+
			"2024-01-06,Income,Salary,50.00,refund\n",
		string(data))

	reloaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, reloaded.Ledger)
}

func TestAppendAndSaveRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	s := New(path)

	bad := core.Transaction{Date: core.NewDate(2024, 1, 1), Type: core.Expense, Category: core.Food, Description: "free"}
	l, err := s.AppendAndSave(ctx, core.Ledger{}, bad)
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, l)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "rejected transaction must not create the file")
}

func TestSaveIsByteStable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance_data.csv")
	s := New(path)

	l := core.Ledger{
		newTx(t, "2024-01-05", "Income", "Salary", "1234.5", "pay"),
		newTx(t, "2024-01-20", "Expense", "Other", "0.1", "quote \"inside\", comma"),
	}
	require.NoError(t, s.Save(ctx, l))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, snap.Ledger))
	}
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
	assert.Contains(t, string(again), "1234.50")
	assert.Contains(t, string(again), "-0.10")
}

func TestSavePreservesUnreadableFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "finance_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("garbage that is not a ledger\n"), 0644))
	s := New(path)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, ledger.NoticeUnreadable, snap.Notice)

	_, err = s.AppendAndSave(ctx, snap.Ledger, newTx(t, "2024-01-05", "Expense", "Food", "5", "snack"))
	require.NoError(t, err)

	backups, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	kept, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "garbage that is not a ledger\n", string(kept))

	reloaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, reloaded.Ledger, 1)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(filepath.Join(dir, "finance_data.csv"))
	require.NoError(t, s.Save(ctx, core.Ledger{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "finance_data.csv", entries[0].Name())
}

func TestEncodeDecodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, strings.Join(Header, ",")+"\n", buf.String())

	l, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestNewDefaultsPath(t *testing.T) {
	assert.Equal(t, DefaultPath, New("  ").Path())
}

func TestAppendAndSaveConcurrentWritersKeepEveryRow(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "finance_data.csv"))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		tx := newTx(t, "2024-01-05", "Expense", "Food", "1", fmt.Sprintf("row %d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := s.Load(ctx)
			if !assert.NoError(t, err) {
				return
			}
			_, err = s.AppendAndSave(ctx, snap.Ledger, tx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Ledger, writers)
	assert.Equal(t, int64(-writers*100), core.Summarize(snap.Ledger).Balance.Cents)
}

func TestAppendAndSaveIgnoresStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "finance_data.csv"))

	stale, err := s.Load(ctx)
	require.NoError(t, err)
	_, err = s.AppendAndSave(ctx, stale.Ledger, newTx(t, "2024-01-05", "Expense", "Food", "5", "first"))
	require.NoError(t, err)

	l, err := s.AppendAndSave(ctx, stale.Ledger, newTx(t, "2024-01-06", "Expense", "Food", "7", "second"))
	require.NoError(t, err)
	require.Len(t, l, 2)
	assert.Equal(t, "first", l[0].Description)
	assert.Equal(t, "second", l[1].Description)
}
