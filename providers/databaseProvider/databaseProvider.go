package databaseProvider

import (
	"inventory/database"
	"inventory/providers"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type PostgresProvider struct {
	db *sqlx.DB
}

func NewDBProvider(connectionStr string, logger *zap.Logger) (providers.DBProvider, error) {
	db, err := sqlx.Connect("postgres", connectionStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to Postgres")
	}
	logger.Info("connected to PostgreSQL")

	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migration failed")
	}
	logger.Info("migration complete")
	return &PostgresProvider{db: db}, nil
}

func (p *PostgresProvider) DB() *sqlx.DB {
	return p.db
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

func migrateUp(db *sqlx.DB) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(database.Migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
