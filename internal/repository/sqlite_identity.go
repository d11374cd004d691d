package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
)

// SQLiteIdentityRepo implements IdentityRepo using a SQLite database.
type SQLiteIdentityRepo struct {
	db db.DBTX
}

// NewSQLiteIdentityRepo creates a new SQLiteIdentityRepo.
func NewSQLiteIdentityRepo(conn db.DBTX) *SQLiteIdentityRepo {
	return &SQLiteIdentityRepo{db: conn}
}

func (r *SQLiteIdentityRepo) Get(ctx context.Context) (*identity.Identity, error) {
	query := `SELECT user_id, name, role, token, expires_at
		FROM identity WHERE id = 'default'`
	row := r.db.QueryRowContext(ctx, query)

	var (
		id        identity.Identity
		role      string
		expiresAt sql.NullString
	)
	err := row.Scan(&id.UserID, &id.Name, &role, &id.Token, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning identity: %w", err)
	}
	id.Role = domain.ParseRole(role)
	id.ExpiresAt = parseStoredTime(expiresAt)
	return &id, nil
}

func (r *SQLiteIdentityRepo) Save(ctx context.Context, id *identity.Identity) error {
	if id == nil {
		return fmt.Errorf("saving identity: nil identity")
	}
	query := `INSERT OR REPLACE INTO identity (id, user_id, name, role, token, expires_at, saved_at)
		VALUES ('default', ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		id.UserID,
		id.Name,
		string(id.Role),
		id.Token,
		storedTime(id.ExpiresAt),
		nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}
	return nil
}

// Clear removes the stored identity. Clearing when nothing is stored is not an error.
func (r *SQLiteIdentityRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM identity WHERE id = 'default'`); err != nil {
		return fmt.Errorf("clearing identity: %w", err)
	}
	return nil
}
