package sheetsservice

import (
	"context"
	"inventory/models"
	"inventory/providers"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const ConfigKey = "googleSheetsConfig"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ConfigRepository interface {
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, cfg Config) error
	Clear(ctx context.Context) error
}

type KVConfigRepository struct {
	store providers.KVStore
}

func NewConfigRepository(store providers.KVStore) ConfigRepository {
	return &KVConfigRepository{store: store}
}

// Load returns an empty Config when nothing was saved yet.
func (r *KVConfigRepository) Load(ctx context.Context) (Config, error) {
	raw, err := r.store.Get(ctx, ConfigKey)
	if errors.Is(err, models.ErrKeyNotFound) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read sheets config")
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode sheets config")
	}
	return cfg, nil
}

func (r *KVConfigRepository) Save(ctx context.Context, cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode sheets config")
	}
	return r.store.Set(ctx, ConfigKey, raw)
}

func (r *KVConfigRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, ConfigKey)
}
