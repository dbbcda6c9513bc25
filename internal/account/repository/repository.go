package repository

import (
	"context"

	"sessiongate/internal/account/domain"
)

// Repository is the narrow accessor to the external account store. Lookups
// return (nil, nil) for missing accounts; errors mean the store itself
// failed and are surfaced to callers as an unavailability.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// GetPasswordHash returns the stored password hash for the account, or
	// "" when the account has none.
	GetPasswordHash(ctx context.Context, id string) (string, error)
	// Update persists lockout bookkeeping (failed attempts, lock expiry)
	// back to the account record.
	Update(ctx context.Context, a *domain.Account) error
}
