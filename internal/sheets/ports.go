package sheets

import (
	"context"

	"finance/internal/core"
)

// TransactionExporter appends recorded transactions to an external sheet.
type TransactionExporter interface {
	ExportTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
