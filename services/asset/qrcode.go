package assetservice

import (
	"context"
	"image/color"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

var qrForeground = color.RGBA{R: 0x1e, G: 0x3c, B: 0x72, A: 0xff}

// QRCode renders the asset's label payload as a PNG of size x size pixels.
func (s *assetService) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	asset, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	payload, err := json.Marshal(QRPayload{
		Tag:         asset.Tag,
		PatrimonyID: asset.PatrimonyID,
		Hostname:    asset.Hostname,
		Owner:       asset.Owner,
		Sector:      asset.Sector,
		Timestamp:   s.now().UTC(),
		Source:      QRSource,
	})
	if err != nil {
		return nil, err
	}

	q, err := qrcode.New(string(payload), qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = qrForeground
	q.BackgroundColor = color.White
	return q.PNG(size)
}
