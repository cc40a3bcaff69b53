package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchCloser exposes reconciliation close-out to the invoices module inside
// its own transaction.
type BatchCloser struct {
	repo Repository
}

func NewBatchCloser(repo Repository) *BatchCloser {
	return &BatchCloser{repo: repo}
}

func (b *BatchCloser) MarkBatchesReconciled(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, periodStart, periodEnd string) error {
	return b.repo.WithTx(tx).MarkBatchesReconciled(ctx, supplierID, periodStart, periodEnd)
}
