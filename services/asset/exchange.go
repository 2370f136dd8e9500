package assetservice

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"inventory/models"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jinzhu/copier"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ExportCSV writes the header and one row per asset, leaving out the two
// timestamp columns. Fields are quoted per RFC 4180.
func (s *assetService) ExportCSV(ctx context.Context, w io.Writer) error {
	assets := s.List(ctx)
	if len(assets) == 0 {
		return models.ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(models.AssetColumns[:models.ExportColumnCount]); err != nil {
		return err
	}
	now := s.now()
	for _, a := range assets {
		if err := cw.Write(a.Row(now)[:models.ExportColumnCount]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV adds every row of an export file. A failing row does not stop the
// rest; all row errors are returned together.
func (s *assetService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		result ImportResult
		merr   *multierror.Error
		line   int
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return result, errors.Wrap(models.ErrValidation, err.Error())
		}
		if line == 1 && len(row) > 0 && strings.TrimPrefix(strings.TrimSpace(row[0]), "\ufeff") == models.AssetColumns[0] {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		var req models.AssetReq
		asset := models.AssetFromRow(row)
		if err := copier.Copy(&req, &asset); err != nil {
			return result, errors.Wrap(err, "failed to map csv row")
		}
		if _, err := s.Add(ctx, req); err != nil {
			if errors.Is(err, models.ErrPersistence) {
				return result, err
			}
			result.Failed++
			merr = multierror.Append(merr, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		result.Imported++
	}

	s.logger.GetLogger().Info("csv import finished",
		zap.Int("imported", result.Imported), zap.Int("failed", result.Failed))
	return result, merr.ErrorOrNil()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (s *assetService) Backup(ctx context.Context) models.Backup {
	return models.Backup{
		Assets:    s.List(ctx),
		Timestamp: s.now().UTC(),
		Version:   models.BackupVersion,
	}
}

// Restore replaces the inventory with the assets of a backup document. The
// current set is left alone unless the document carries an "assets" array.
func (s *assetService) Restore(ctx context.Context, raw []byte) (int, error) {
	var doc map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, errors.Wrap(models.ErrInvalidBackupFile, err.Error())
	}
	list, ok := doc["assets"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(list), []byte("[")) {
		return 0, errors.Wrap(models.ErrInvalidBackupFile, "missing assets array")
	}

	var assets []models.Asset
	if err := json.Unmarshal(list, &assets); err != nil {
		return 0, errors.Wrap(models.ErrInvalidBackupFile, err.Error())
	}
	if err := s.ReplaceAll(ctx, assets); err != nil {
		if errors.Is(err, models.ErrValidation) {
			return 0, errors.Wrap(models.ErrInvalidBackupFile, err.Error())
		}
		return 0, err
	}
	return len(assets), nil
}
