package emailindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/electronshop/shopkeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lookup(ctx context.Context, key string) (uint64, error) {
	query :=
		`SELECT credential_id FROM credential_email_index
		 WHERE email_key = $1`

	var id int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.NotFound("email not indexed")
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return uint64(id), nil
}

func (r *PostgresRepository) Remember(ctx context.Context, key string, credentialID uint64) error {
	query :=
		`INSERT INTO credential_email_index (email_key, credential_id)
		 VALUES ($1, $2)
		 ON CONFLICT (email_key) DO UPDATE
		 SET credential_id = EXCLUDED.credential_id, updated_at = now()`

	_, err := dbx.Exec(ctx, r.db, query, key, int64(credentialID))
	return err
}

func (r *PostgresRepository) Forget(ctx context.Context, key string) error {
	query := `DELETE FROM credential_email_index WHERE email_key = $1`

	_, err := dbx.Exec(ctx, r.db, query, key)
	return err
}
