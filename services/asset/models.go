package assetservice

import "time"

// ImportResult summarises a CSV import. Rows that fail are counted in Failed
// and described by the returned error.
type ImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

type RestoreResult struct {
	Restored int `json:"restored"`
}

// QRPayload is the JSON document encoded into an asset label.
type QRPayload struct {
	Tag         string    `json:"id"`
	PatrimonyID string    `json:"patrimonio,omitempty"`
	Hostname    string    `json:"hostname,omitempty"`
	Owner       string    `json:"usuario,omitempty"`
	Sector      string    `json:"setor,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
}

const QRSource = "CEE-SC Inventário"
