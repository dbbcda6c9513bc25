package domain

import (
	"errors"
	"time"
)

// Account is the externally owned account record. The auth core reads it and
// requests updates through the repository; it never creates or deletes one.
type Account struct {
	ID               string
	Username         string
	Roles            []string
	Permissions      []string
	Active           bool
	FailedAttempts   int
	LockedUntil      *time.Time // nil when not locked
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate validates the account for persistence. Returns an error describing the first validation failure.
func (a *Account) Validate() error {
	if a.Username == "" {
		return errors.New("username is required")
	}
	return nil
}

// HasPermissions reports whether required is a subset of the account's
// permission list.
func (a *Account) HasPermissions(required []string) bool {
	return Subset(required, a.Permissions)
}

// Subset reports whether every element of required appears in granted.
func Subset(required, granted []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
