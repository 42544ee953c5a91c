package ports

import (
	"context"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// WriteResult is what a persistence write reports back to its caller.
type WriteResult struct {
	InsertedID   int64
	RowsAffected int64
}

// AccountRepository defines persistence for CMS accounts.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Create stores a new account and returns its allocated ID.
	Create(ctx context.Context, account *domain.Account) (WriteResult, error)
}
