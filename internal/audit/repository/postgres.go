package repository

import (
	"context"
	"database/sql"

	"sessiongate/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, account_id, action, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID,
		sql.NullString{String: a.AccountID, Valid: a.AccountID != ""},
		a.Action, a.IP,
		sql.NullString{String: a.Metadata, Valid: a.Metadata != ""},
		a.CreatedAt,
	)
	return err
}

// ListByAccount returns audit logs for the given account, newest first,
// paginated by limit and offset. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, action, ip, metadata, created_at
		FROM audit_logs WHERE account_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a         domain.AuditLog
			accountID sql.NullString
			metadata  sql.NullString
		)
		if err := rows.Scan(&a.ID, &accountID, &a.Action, &a.IP, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.AccountID = accountID.String
		a.Metadata = metadata.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
