package memory

import (
	"context"
	"fmt"
	"sync"

	"finvision/internal/core"
	"finvision/internal/sheets"
)

// Mirror collects mirrored rows in memory.
type Mirror struct {
	mu   sync.Mutex
	rows [][]any
}

// Ensure interface conformance
var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, sheets.Row(tx))
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

// Rows returns a copy of the mirrored rows.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.rows...)
}
