package memory

import (
	"context"
	"fmt"
	"sync"

	"finance/internal/core"
	"finance/internal/sheets"
)

// Exporter keeps exported transactions in memory.
type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// ExportTransaction stores t and returns a synthetic row reference.
func (e *Exporter) ExportTransaction(_ context.Context, t core.Transaction) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, t)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of everything exported so far, oldest first.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.rows...)
}
