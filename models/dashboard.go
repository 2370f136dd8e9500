package models

// AssetStatistics holds the aggregates shown on the inventory dashboard.
// They are derived on demand from the live set.
type AssetStatistics struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	Maintenance     int `json:"maintenance"`
	ExpiredWarranty int `json:"expired_warranty"`
}
