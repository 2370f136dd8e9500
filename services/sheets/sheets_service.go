package sheetsservice

import (
	"context"
	"fmt"
	"inventory/metrics"
	"inventory/models"
	"inventory/providers"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

const (
	directionPush = "push"
	directionPull = "pull"

	gridRows    = 1000
	gridColumns = 25
)

var spreadsheetIDRegex = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// headerBackground is the dark blue of the header row.
var headerBackground = &sheets.Color{Red: 0.12, Green: 0.23, Blue: 0.45}

// SyncService mirrors the inventory to one named tab of a remote spreadsheet.
// There is no conflict detection: the last push or pull wins.
type SyncService interface {
	Configure(ctx context.Context, spreadsheet, apiKey string) (Status, error)
	Status(ctx context.Context) (Status, error)
	SpreadsheetURL(ctx context.Context) (string, error)
	ClearConfig(ctx context.Context) error
	EnsureSheet(ctx context.Context) error
	Push(ctx context.Context, assets []models.Asset) error
	Pull(ctx context.Context) ([]models.Asset, error)
	AppendOne(ctx context.Context, asset models.Asset) error
}

type Option func(*syncService)

func WithClock(now func() time.Time) Option {
	return func(s *syncService) {
		s.now = now
	}
}

type syncService struct {
	repo      ConfigRepository
	client    SheetsClient
	logger    providers.ZapLoggerProvider
	sheetName string
	now       func() time.Time
}

func NewSyncService(repo ConfigRepository, client SheetsClient, logger providers.ZapLoggerProvider, sheetName string, opts ...Option) SyncService {
	s := &syncService{
		repo:      repo,
		client:    client,
		logger:    logger,
		sheetName: sheetName,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractSpreadsheetID accepts a full spreadsheet URL or a bare id.
func ExtractSpreadsheetID(spreadsheet string) (string, error) {
	spreadsheet = strings.TrimSpace(spreadsheet)
	if m := spreadsheetIDRegex.FindStringSubmatch(spreadsheet); m != nil {
		return m[1], nil
	}
	if strings.ContainsAny(spreadsheet, "/?:# ") || spreadsheet == "" {
		return "", models.ErrInvalidSpreadsheetURL
	}
	return spreadsheet, nil
}

func spreadsheetURL(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", id)
}

func (s *syncService) status(cfg Config) Status {
	return Status{
		IsConfigured:     cfg.IsConfigured(),
		HasAPIKey:        cfg.APIKey != "",
		HasSpreadsheetID: cfg.SpreadsheetID != "",
		SheetName:        s.sheetName,
		SpreadsheetURL:   spreadsheetURL(cfg.SpreadsheetID),
	}
}

func (s *syncService) Configure(ctx context.Context, spreadsheet, apiKey string) (Status, error) {
	id, err := ExtractSpreadsheetID(spreadsheet)
	if err != nil {
		return Status{}, err
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Status{}, errors.Wrap(models.ErrMissingField, "api key is required")
	}

	cfg := Config{APIKey: apiKey, SpreadsheetID: id}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return Status{}, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	s.logger.GetLogger().Info("sheets configured", zap.String("spreadsheet_id", id))
	return s.status(cfg), nil
}

func (s *syncService) Status(ctx context.Context) (Status, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	return s.status(cfg), nil
}

func (s *syncService) SpreadsheetURL(ctx context.Context) (string, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return "", err
	}
	return spreadsheetURL(cfg.SpreadsheetID), nil
}

func (s *syncService) ClearConfig(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return nil
}

func (s *syncService) config(ctx context.Context) (Config, error) {
	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return Config{}, err
	}
	if !cfg.IsConfigured() {
		return Config{}, models.ErrNotConfigured
	}
	return cfg, nil
}

func (s *syncService) rangeOf(cells string) string {
	return s.sheetName + "!" + cells
}

func (s *syncService) EnsureSheet(ctx context.Context) error {
	cfg, err := s.config(ctx)
	if err != nil {
		return err
	}
	_, err = s.ensureSheet(ctx, cfg)
	return err
}

// ensureSheet returns the numeric id of the named tab, creating it when the
// spreadsheet does not have one yet.
func (s *syncService) ensureSheet(ctx context.Context, cfg Config) (int64, error) {
	spreadsheet, err := s.client.GetSpreadsheet(ctx, cfg)
	if err != nil {
		return 0, err
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: s.sheetName,
					GridProperties: &sheets.GridProperties{
						RowCount:    gridRows,
						ColumnCount: gridColumns,
					},
				},
			},
		}},
	}
	if err := s.client.BatchUpdate(ctx, cfg, req); err != nil {
		return 0, err
	}
	s.logger.GetLogger().Info("sheet tab created", zap.String("sheet", s.sheetName))

	// the new tab id is assigned remotely
	spreadsheet, err = s.client.GetSpreadsheet(ctx, cfg)
	if err != nil {
		return 0, err
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: sheet %q missing after creation", models.ErrRemoteError, s.sheetName)
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// Push replaces the remote tab with a header row followed by every asset.
func (s *syncService) Push(ctx context.Context, assets []models.Asset) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveSync(directionPush, start, err)
	}()

	cfg, err := s.config(ctx)
	if err != nil {
		return err
	}
	sheetID, err := s.ensureSheet(ctx, cfg)
	if err != nil {
		return err
	}

	syncedAt := s.now()
	values := make([][]interface{}, 0, len(assets)+1)
	values = append(values, toCells(models.AssetColumns))
	for _, asset := range assets {
		values = append(values, toCells(asset.Row(syncedAt)))
	}

	if err := s.client.BatchClear(ctx, cfg, s.rangeOf("A:Z")); err != nil {
		return err
	}
	target := s.rangeOf(fmt.Sprintf("A1:Z%d", len(values)))
	if err := s.client.UpdateValues(ctx, cfg, target, &sheets.ValueRange{Range: target, Values: values}); err != nil {
		return err
	}
	if err := s.formatHeader(ctx, cfg, sheetID); err != nil {
		return err
	}

	s.logger.GetLogger().Info("inventory pushed to sheets", zap.Int("assets", len(assets)))
	return nil
}

func (s *syncService) formatHeader(ctx context.Context, cfg Config, sheetID int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   gridColumns,
					ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: headerBackground,
						TextFormat: &sheets.TextFormat{
							Bold:            true,
							ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}
	return s.client.BatchUpdate(ctx, cfg, req)
}

// Pull reads every data row below the header. Each row gets a fresh id and
// rows without a tag are skipped.
func (s *syncService) Pull(ctx context.Context) (assets []models.Asset, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveSync(directionPull, start, err)
	}()

	cfg, err := s.config(ctx)
	if err != nil {
		return nil, err
	}
	vr, err := s.client.GetValues(ctx, cfg, s.rangeOf("A2:Z"))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	assets = make([]models.Asset, 0, len(vr.Values))
	for _, cells := range vr.Values {
		row := make([]string, len(cells))
		for i, c := range cells {
			if c != nil {
				row[i] = fmt.Sprint(c)
			}
		}
		asset := models.AssetFromRow(row)
		if asset.Tag == "" {
			continue
		}
		asset.ID = uuid.New()
		if asset.CreatedAt.IsZero() {
			asset.CreatedAt = now
		}
		assets = append(assets, asset)
	}

	s.logger.GetLogger().Info("inventory pulled from sheets", zap.Int("assets", len(assets)), zap.Int("rows", len(vr.Values)))
	return assets, nil
}

func (s *syncService) AppendOne(ctx context.Context, asset models.Asset) error {
	cfg, err := s.config(ctx)
	if err != nil {
		return err
	}
	row := &sheets.ValueRange{Values: [][]interface{}{toCells(asset.Row(s.now()))}}
	if err := s.client.AppendValues(ctx, cfg, s.rangeOf("A"), row); err != nil {
		return err
	}
	s.logger.GetLogger().Info("asset appended to sheets", zap.String("tag", asset.Tag))
	return nil
}
