package google

import (
	"context"
	"testing"

	"finvision/internal/core"
)

func TestQuoteSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Transactions", "Transactions"},
		{"My Ledger", "'My Ledger'"},
		{"Bob's", "'Bob''s'"},
	}
	for _, tt := range tests {
		if got := quoteSheetName(tt.in); got != tt.want {
			t.Errorf("quoteSheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := tableRange("My Ledger"); got != "'My Ledger'!A:E" {
		t.Errorf("tableRange = %q", got)
	}
}

func TestHasHeader(t *testing.T) {
	if hasHeader(nil) {
		t.Error("empty sheet has no header")
	}
	if hasHeader([][]any{{" "}}) {
		t.Error("blank cell is not a header")
	}
	if !hasHeader([][]any{{"Date", "Type"}}) {
		t.Error("expected header")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := New(context.Background(), Config{SpreadsheetID: "abc"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestAppendTransactionValidates(t *testing.T) {
	c := &Client{spreadsheetID: "abc", sheetName: DefaultSheetName}
	if _, err := c.AppendTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}
	valid := core.Transaction{
		Date:        core.NewDate(2024, 1, 1),
		Type:        core.Income,
		Category:    core.Salary,
		Amount:      core.Money{Cents: 100},
		Description: "pay",
	}
	if _, err := c.AppendTransaction(context.Background(), valid); err == nil {
		t.Fatal("expected error without a sheets service")
	}
}
