package storeprovider

import (
	"context"
	"database/sql"
	"inventory/models"
	"inventory/providers"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresStore keeps documents in the kv_store table created by the
// database migrations.
type PostgresStore struct {
	db     *sqlx.DB
	closer func() error
}

func NewPostgresStore(db *sqlx.DB, closer func() error) providers.KVStore {
	return &PostgresStore{db: db, closer: closer}
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key %s", key)
	}
	return value, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return errors.Wrapf(err, "failed to write key %s", key)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return errors.Wrapf(err, "failed to delete key %s", key)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
