package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"sessiongate/internal/account/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, roles, permissions, active, failed_attempts, locked_until, two_factor_enabled, created_at, updated_at`

// FindByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindByUsername returns the account with the given username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

// GetPasswordHash returns the password hash for the account, or "" if the
// account does not exist or has no local credential.
func (r *PostgresRepository) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM accounts WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	if !hash.Valid {
		return "", nil
	}
	return hash.String, nil
}

// Update persists the mutable account fields (lockout bookkeeping, active
// flag, role/permission snapshot). The account must already exist.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	roles, err := json.Marshal(a.Roles)
	if err != nil {
		return err
	}
	perms, err := json.Marshal(a.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE accounts
		SET roles = $2, permissions = $3, active = $4, failed_attempts = $5,
		    locked_until = $6, two_factor_enabled = $7, updated_at = $8
		WHERE id = $1`,
		a.ID, roles, perms, a.Active, a.FailedAttempts,
		timeToNullTime(a.LockedUntil), a.TwoFactorEnabled, time.Now().UTC(),
	)
	return err
}

// Create inserts a new account with the given password hash. Used by the seed
// tool; the auth core never creates accounts.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account, passwordHash string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	roles, err := json.Marshal(a.Roles)
	if err != nil {
		return err
	}
	perms, err := json.Marshal(a.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Username, roles, perms, a.Active, a.FailedAttempts,
		timeToNullTime(a.LockedUntil), a.TwoFactorEnabled, a.CreatedAt, a.UpdatedAt,
		sql.NullString{String: passwordHash, Valid: passwordHash != ""},
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a           domain.Account
		roles       []byte
		perms       []byte
		lockedUntil sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Username, &roles, &perms, &a.Active,
		&a.FailedAttempts, &lockedUntil, &a.TwoFactorEnabled,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &a.Roles); err != nil {
			return nil, err
		}
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &a.Permissions); err != nil {
			return nil, err
		}
	}
	a.LockedUntil = nullTimeToPtr(lockedUntil)
	return &a, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
