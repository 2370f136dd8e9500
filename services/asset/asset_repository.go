package assetservice

import (
	"context"
	"inventory/models"
	"inventory/providers"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// InventoryKey is the store entry holding the whole asset sequence.
const InventoryKey = "inventarioCEE"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AssetRepository is the durable mirror of the in-memory asset set. Save always
// replaces the whole document.
type AssetRepository interface {
	Load(ctx context.Context) ([]models.Asset, error)
	Save(ctx context.Context, assets []models.Asset) error
}

type KVAssetRepository struct {
	store providers.KVStore
}

func NewAssetRepository(store providers.KVStore) AssetRepository {
	return &KVAssetRepository{store: store}
}

func (r *KVAssetRepository) Load(ctx context.Context) ([]models.Asset, error) {
	raw, err := r.store.Get(ctx, InventoryKey)
	if errors.Is(err, models.ErrKeyNotFound) {
		return []models.Asset{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read inventory")
	}

	var assets []models.Asset
	if err := json.Unmarshal(raw, &assets); err != nil {
		return nil, errors.Wrap(err, "failed to decode inventory")
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (r *KVAssetRepository) Save(ctx context.Context, assets []models.Asset) error {
	if assets == nil {
		assets = []models.Asset{}
	}
	raw, err := json.Marshal(assets)
	if err != nil {
		return errors.Wrap(err, "failed to encode inventory")
	}
	return r.store.Set(ctx, InventoryKey, raw)
}
