package interceptors

import (
	"context"

	"sessiongate/internal/auth/service"
)

type contextKey struct{ name string }

var accountKey = contextKey{"account"}

// WithAccount returns a context carrying the authenticated account context.
// Handlers read it back via GetAccount.
func WithAccount(ctx context.Context, acct *service.AccountContext) context.Context {
	return context.WithValue(ctx, accountKey, acct)
}

// GetAccount returns the authenticated account context and true if set.
func GetAccount(ctx context.Context) (*service.AccountContext, bool) {
	v, ok := ctx.Value(accountKey).(*service.AccountContext)
	return v, ok
}

// GetAccountID returns the authenticated account id and true if set.
func GetAccountID(ctx context.Context) (string, bool) {
	if acct, ok := GetAccount(ctx); ok {
		return acct.AccountID, true
	}
	return "", false
}

// GetSessionID returns the authenticated session id and true if set.
func GetSessionID(ctx context.Context) (string, bool) {
	if acct, ok := GetAccount(ctx); ok {
		return acct.SessionID, true
	}
	return "", false
}
