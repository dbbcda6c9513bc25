package interceptors

import (
	"context"
	"testing"

	"sessiongate/internal/auth/service"
)

func TestAccountContextRoundTrip(t *testing.T) {
	acct := &service.AccountContext{
		AccountID:   "acc-1",
		Username:    "alice",
		Roles:       []string{"admin"},
		Permissions: []string{"read"},
		SessionID:   "sess-1",
	}
	ctx := WithAccount(context.Background(), acct)

	got, ok := GetAccount(ctx)
	if !ok || got != acct {
		t.Errorf("GetAccount = %+v, ok = %v", got, ok)
	}
	if id, ok := GetAccountID(ctx); !ok || id != "acc-1" {
		t.Errorf("GetAccountID = %q, ok = %v", id, ok)
	}
	if id, ok := GetSessionID(ctx); !ok || id != "sess-1" {
		t.Errorf("GetSessionID = %q, ok = %v", id, ok)
	}
}

func TestAccountContextUnset(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetAccount(ctx); ok {
		t.Error("GetAccount on empty context should report not set")
	}
	if _, ok := GetAccountID(ctx); ok {
		t.Error("GetAccountID on empty context should report not set")
	}
	if _, ok := GetSessionID(ctx); ok {
		t.Error("GetSessionID on empty context should report not set")
	}
}
