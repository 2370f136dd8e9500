package assetservice

import (
	"context"
	"fmt"
	"inventory/metrics"
	"inventory/models"
	"inventory/providers"
	"inventory/utils"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type AssetService interface {
	Add(ctx context.Context, req models.AssetReq) (models.Asset, error)
	Update(ctx context.Context, id uuid.UUID, req models.AssetReq) (models.Asset, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (models.Asset, error)
	FindByTag(ctx context.Context, tag string) (models.Asset, error)
	Filter(ctx context.Context, filter models.AssetFilter) []models.Asset
	Statistics(ctx context.Context) models.AssetStatistics
	List(ctx context.Context) []models.Asset
	ReplaceAll(ctx context.Context, assets []models.Asset) error
	SeedSampleData(ctx context.Context) (bool, error)

	ExportCSV(ctx context.Context, w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error)
	Backup(ctx context.Context) models.Backup
	Restore(ctx context.Context, raw []byte) (int, error)
	QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error)
}

type Option func(*assetService)

// WithClock replaces time.Now, used for creation stamps and warranty checks.
func WithClock(now func() time.Time) Option {
	return func(s *assetService) {
		s.now = now
	}
}

type assetService struct {
	repo   AssetRepository
	logger providers.ZapLoggerProvider
	now    func() time.Time

	// mu guards assets and is held across mutate and persist
	mu     sync.RWMutex
	assets []models.Asset
}

// NewAssetService reads the mirror once and keeps the set in memory from then on.
func NewAssetService(ctx context.Context, repo AssetRepository, logger providers.ZapLoggerProvider, opts ...Option) (AssetService, error) {
	s := &assetService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	assets, err := repo.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inventory")
	}
	s.assets = assets
	logger.GetLogger().Info("inventory loaded", zap.Int("assets", len(assets)))
	return s, nil
}

func normalizeReq(req models.AssetReq) (models.AssetReq, error) {
	req.Tag = strings.TrimSpace(req.Tag)
	req.Status = models.ParseAssetStatus(string(req.Status))
	if req.Status == "" {
		req.Status = models.StatusActive
	}
	if err := utils.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

// indexOf returns -1 when absent. Callers hold mu.
func (s *assetService) indexOf(id uuid.UUID) int {
	for i := range s.assets {
		if s.assets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *assetService) tagTaken(tag string, except uuid.UUID) bool {
	for i := range s.assets {
		if s.assets[i].Tag == tag && s.assets[i].ID != except {
			return true
		}
	}
	return false
}

// persist writes the whole set to the mirror. Callers hold the write lock.
func (s *assetService) persist(ctx context.Context) error {
	snapshot := make([]models.Asset, len(s.assets))
	copy(snapshot, s.assets)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		metrics.StoreWriteErrorCount.WithLabelValues(InventoryKey).Inc()
		s.logger.GetLogger().Error("failed to persist inventory", zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

func (s *assetService) Add(ctx context.Context, req models.AssetReq) (asset models.Asset, err error) {
	defer func() {
		metrics.AssetMutationCounter.WithLabelValues("add", metrics.Result(err)).Inc()
	}()

	req, err = normalizeReq(req)
	if err != nil {
		return models.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tagTaken(req.Tag, uuid.Nil) {
		return models.Asset{}, errors.Wrapf(models.ErrDuplicateKey, "tag %s", req.Tag)
	}

	if err := copier.Copy(&asset, &req); err != nil {
		return models.Asset{}, errors.Wrap(err, "failed to map asset input")
	}
	asset.ID = uuid.New()
	asset.CreatedAt = s.now().UTC()

	s.assets = append(s.assets, asset)
	s.logger.GetLogger().Info("asset added", zap.String("tag", asset.Tag), zap.String("id", asset.ID.String()))
	return asset, s.persist(ctx)
}

// Update replaces every editable field. ID and CreatedAt keep their original values.
func (s *assetService) Update(ctx context.Context, id uuid.UUID, req models.AssetReq) (asset models.Asset, err error) {
	defer func() {
		metrics.AssetMutationCounter.WithLabelValues("update", metrics.Result(err)).Inc()
	}()

	req, err = normalizeReq(req)
	if err != nil {
		return models.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Asset{}, errors.Wrapf(models.ErrNotFound, "id %s", id)
	}
	if s.tagTaken(req.Tag, id) {
		return models.Asset{}, errors.Wrapf(models.ErrDuplicateKey, "tag %s", req.Tag)
	}

	asset = s.assets[idx]
	if err := copier.Copy(&asset, &req); err != nil {
		return models.Asset{}, errors.Wrap(err, "failed to map asset input")
	}
	asset.ID = s.assets[idx].ID
	asset.CreatedAt = s.assets[idx].CreatedAt

	s.assets[idx] = asset
	s.logger.GetLogger().Info("asset updated", zap.String("tag", asset.Tag), zap.String("id", id.String()))
	return asset, s.persist(ctx)
}

func (s *assetService) Remove(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		metrics.AssetMutationCounter.WithLabelValues("remove", metrics.Result(err)).Inc()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return errors.Wrapf(models.ErrNotFound, "id %s", id)
	}
	s.assets = append(s.assets[:idx], s.assets[idx+1:]...)
	s.logger.GetLogger().Info("asset removed", zap.String("id", id.String()))
	return s.persist(ctx)
}

func (s *assetService) Find(_ context.Context, id uuid.UUID) (models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Asset{}, errors.Wrapf(models.ErrNotFound, "id %s", id)
	}
	return s.assets[idx], nil
}

func (s *assetService) FindByTag(_ context.Context, tag string) (models.Asset, error) {
	tag = strings.TrimSpace(tag)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assets {
		if a.Tag == tag {
			return a, nil
		}
	}
	return models.Asset{}, errors.Wrapf(models.ErrNotFound, "tag %s", tag)
}

// Filter ANDs the three criteria. The search text is matched case-insensitively
// against tag, hostname, owner and patrimony id.
func (s *assetService) Filter(_ context.Context, filter models.AssetFilter) []models.Asset {
	search := strings.ToLower(strings.TrimSpace(filter.SearchText))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Tag), search) &&
			!strings.Contains(strings.ToLower(a.Hostname), search) &&
			!strings.Contains(strings.ToLower(a.Owner), search) &&
			!strings.Contains(strings.ToLower(a.PatrimonyID), search) {
			continue
		}
		if filter.Sector != "" && a.Sector != filter.Sector {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (s *assetService) Statistics(_ context.Context) models.AssetStatistics {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.AssetStatistics{Total: len(s.assets)}
	for _, a := range s.assets {
		switch a.Status {
		case models.StatusActive:
			stats.Active++
		case models.StatusMaintenance:
			stats.Maintenance++
		}
		if a.WarrantyEnd == "" {
			continue
		}
		end, err := time.Parse(models.DateLayout, a.WarrantyEnd)
		if err == nil && end.Before(now) {
			stats.ExpiredWarranty++
		}
	}
	return stats
}

func (s *assetService) List(_ context.Context) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// ReplaceAll swaps the whole set. Records without an id or creation stamp get
// fresh ones; the call is rejected before any change if a record fails the
// same checks as Add or tags are repeated.
func (s *assetService) ReplaceAll(ctx context.Context, assets []models.Asset) (err error) {
	defer func() {
		metrics.AssetMutationCounter.WithLabelValues("replace", metrics.Result(err)).Inc()
	}()

	now := s.now().UTC()
	next := make([]models.Asset, 0, len(assets))
	seenTags := make(map[string]struct{}, len(assets))
	seenIDs := make(map[uuid.UUID]struct{}, len(assets))

	for i, a := range assets {
		var req models.AssetReq
		if err := copier.Copy(&req, &a); err != nil {
			return errors.Wrap(err, "failed to map asset record")
		}
		req, err = normalizeReq(req)
		if err != nil {
			return errors.Wrapf(err, "record %d", i+1)
		}
		if err := copier.Copy(&a, &req); err != nil {
			return errors.Wrap(err, "failed to map asset record")
		}

		if _, dup := seenTags[a.Tag]; dup {
			return errors.Wrapf(models.ErrDuplicateKey, "tag %s", a.Tag)
		}
		seenTags[a.Tag] = struct{}{}

		if _, dup := seenIDs[a.ID]; a.ID == uuid.Nil || dup {
			a.ID = uuid.New()
		}
		seenIDs[a.ID] = struct{}{}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		next = append(next, a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = next
	s.logger.GetLogger().Info("inventory replaced", zap.Int("assets", len(next)))
	return s.persist(ctx)
}

// SeedSampleData inserts two example assets when the inventory is empty and
// reports whether it did.
func (s *assetService) SeedSampleData(ctx context.Context) (bool, error) {
	s.mu.RLock()
	empty := len(s.assets) == 0
	s.mu.RUnlock()
	if !empty {
		return false, nil
	}

	for _, req := range sampleAssets {
		if _, err := s.Add(ctx, req); err != nil {
			return false, err
		}
	}
	return true, nil
}

var sampleAssets = []models.AssetReq{
	{
		Tag:             "CEE001",
		PatrimonyID:     "PAT001",
		SerialNumber:    "SN123456789",
		Hostname:        "CEE-PC001",
		Owner:           "João Silva",
		Sector:          "Presidência",
		Location:        "Sala 101",
		Model:           "Dell OptiPlex 7090",
		CPU:             "Intel Core i7-10700",
		RAMGB:           16,
		StorageGB:       512,
		StorageType:     "SSD",
		OS:              "Windows 10",
		OSBuild:         "21H2",
		OfficeVersion:   "Office 365",
		Antivirus:       "Windows Defender",
		IPAddress:       "192.168.1.100",
		MACAddress:      "00:1B:44:11:3A:B7",
		AcquiredOn:      "2023-01-15",
		WarrantyEnd:     "2026-01-15",
		Status:          models.StatusActive,
		LastMaintenance: "2024-01-15",
		Notes:           "Computador em excelente estado",
	},
	{
		Tag:             "CEE002",
		PatrimonyID:     "PAT002",
		SerialNumber:    "SN987654321",
		Hostname:        "CEE-PC002",
		Owner:           "Maria Santos",
		Sector:          "Secretaria Executiva",
		Location:        "Sala 102",
		Model:           "HP EliteDesk 800 G6",
		CPU:             "Intel Core i5-10500",
		RAMGB:           8,
		StorageGB:       256,
		StorageType:     "SSD",
		OS:              "Windows 11",
		OSBuild:         "22H2",
		OfficeVersion:   "Office 2019",
		Antivirus:       "Kaspersky",
		IPAddress:       "192.168.1.101",
		MACAddress:      "00:1B:44:11:3A:B8",
		AcquiredOn:      "2023-03-20",
		WarrantyEnd:     "2026-03-20",
		Status:          models.StatusActive,
		LastMaintenance: "2024-02-10",
	},
}
