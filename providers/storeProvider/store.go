package storeprovider

import (
	"context"
	"inventory/providers"
	configprovider "inventory/providers/configProvider"
	"inventory/providers/databaseProvider"
	redisprovider "inventory/providers/redisProvider"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewStoreProvider opens the durable mirror selected by STORE_DRIVER.
func NewStoreProvider(ctx context.Context, cfg providers.ConfigProvider, logger *zap.Logger) (providers.KVStore, error) {
	driver := cfg.GetStoreDriver()
	logger.Info("opening store", zap.String("driver", driver))

	switch driver {
	case configprovider.StoreDriverMemory:
		return NewMemoryStore(), nil
	case configprovider.StoreDriverFile:
		return NewFileStore(cfg.GetStorePath())
	case configprovider.StoreDriverSQLite:
		return NewSQLiteStore(ctx, cfg.GetSQLiteDSN())
	case configprovider.StoreDriverPostgres:
		db, err := databaseProvider.NewDBProvider(cfg.GetDatabaseString(), logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db.DB(), db.Close), nil
	case configprovider.StoreDriverRedis:
		rdb := redisprovider.NewRedisProvider(cfg.GetRedisAddr())
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, errors.Wrap(err, "failed to reach redis")
		}
		return NewRedisStore(rdb.Client()), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", driver)
	}
}
