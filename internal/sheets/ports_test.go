package sheets

import (
	"testing"

	"finvision/internal/core"
)

func TestRow(t *testing.T) {
	tx := core.Transaction{
		Date:        core.NewDate(2024, 5, 17),
		Type:        core.Expense,
		Category:    core.Housing,
		Amount:      core.Money{Cents: 123456},
		Description: "boiler",
	}
	row := Row(tx)
	want := []any{"2024-05-17", "Expense", "Housing", -1234.56, "boiler"}
	if len(row) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
}
