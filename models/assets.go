package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type AssetStatus string

const (
	StatusActive      AssetStatus = "Active"
	StatusInactive    AssetStatus = "Inactive"
	StatusMaintenance AssetStatus = "Maintenance"
	StatusDiscarded   AssetStatus = "Discarded"
)

// DateLayout is the calendar date format used by acquisition, warranty and maintenance dates.
const DateLayout = "2006-01-02"

func (s AssetStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance, StatusDiscarded:
		return true
	}
	return false
}

// ParseAssetStatus accepts the English names and the Portuguese labels found
// in older spreadsheets and exports. Unknown text is returned unchanged.
func ParseAssetStatus(s string) AssetStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "ativo":
		return StatusActive
	case "inactive", "inativo":
		return StatusInactive
	case "maintenance", "manutenção", "manutencao":
		return StatusMaintenance
	case "discarded", "descartado":
		return StatusDiscarded
	}
	return AssetStatus(strings.TrimSpace(s))
}

// Asset is one tracked computer of the inventory.
type Asset struct {
	ID              uuid.UUID   `json:"id"`
	Tag             string      `json:"tag"`
	PatrimonyID     string      `json:"patrimony_id"`
	SerialNumber    string      `json:"serial_number"`
	Hostname        string      `json:"hostname"`
	Owner           string      `json:"owner"`
	Sector          string      `json:"sector"`
	Location        string      `json:"location"`
	Model           string      `json:"model"`
	CPU             string      `json:"cpu"`
	RAMGB           int         `json:"ram_gb"`
	StorageGB       int         `json:"storage_gb"`
	StorageType     string      `json:"storage_type"`
	OS              string      `json:"os"`
	OSBuild         string      `json:"os_build"`
	OfficeVersion   string      `json:"office_version"`
	Antivirus       string      `json:"antivirus"`
	IPAddress       string      `json:"ip_address"`
	MACAddress      string      `json:"mac_address"`
	AcquiredOn      string      `json:"acquired_on"`
	WarrantyEnd     string      `json:"warranty_end"`
	Status          AssetStatus `json:"status"`
	LastMaintenance string      `json:"last_maintenance"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
}

// AssetReq carries every user editable field of an asset. It is used for both
// insert and update, an update replaces all of them.
type AssetReq struct {
	Tag             string      `json:"tag" validate:"required,max=64"`
	PatrimonyID     string      `json:"patrimony_id" validate:"max=64"`
	SerialNumber    string      `json:"serial_number" validate:"max=128"`
	Hostname        string      `json:"hostname" validate:"max=255"`
	Owner           string      `json:"owner"`
	Sector          string      `json:"sector"`
	Location        string      `json:"location"`
	Model           string      `json:"model"`
	CPU             string      `json:"cpu"`
	RAMGB           int         `json:"ram_gb" validate:"gte=0"`
	StorageGB       int         `json:"storage_gb" validate:"gte=0"`
	StorageType     string      `json:"storage_type"`
	OS              string      `json:"os"`
	OSBuild         string      `json:"os_build"`
	OfficeVersion   string      `json:"office_version"`
	Antivirus       string      `json:"antivirus"`
	IPAddress       string      `json:"ip_address" validate:"omitempty,ip"`
	MACAddress      string      `json:"mac_address" validate:"omitempty,mac"`
	AcquiredOn      string      `json:"acquired_on" validate:"omitempty,datetime=2006-01-02"`
	WarrantyEnd     string      `json:"warranty_end" validate:"omitempty,datetime=2006-01-02"`
	Status          AssetStatus `json:"status" validate:"omitempty,oneof=Active Inactive Maintenance Discarded"`
	LastMaintenance string      `json:"last_maintenance" validate:"omitempty,datetime=2006-01-02"`
	Notes           string      `json:"notes"`
}

// asset search filter
type AssetFilter struct {
	SearchText string
	Sector     string
	Status     AssetStatus
}

// Backup is the document written by a JSON backup and read back by a restore.
type Backup struct {
	Assets    []Asset   `json:"assets"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

const BackupVersion = "1.0"
