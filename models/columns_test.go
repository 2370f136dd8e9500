package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLayout(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	synced := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	a := Asset{
		Tag:         "CEE001",
		PatrimonyID: "PAT001",
		Hostname:    "CEE-PC001",
		RAMGB:       16,
		StorageGB:   512,
		Status:      StatusActive,
		Notes:       "desk, left side",
		CreatedAt:   created,
	}

	row := a.Row(synced)
	require.Len(t, row, len(AssetColumns))
	assert.Equal(t, "CEE001", row[0])
	assert.Equal(t, "16", row[9])
	assert.Equal(t, "512", row[10])
	assert.Equal(t, "Active", row[20])
	assert.Equal(t, "desk, left side", row[22])
	assert.Equal(t, "2024-01-01T10:00:00Z", row[23])
	assert.Equal(t, "2024-06-01T08:30:00Z", row[24])

	assert.Equal(t, "", Asset{Tag: "X"}.Row(synced)[23])
}

func TestAssetFromRow(t *testing.T) {
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	original := Asset{
		Tag: "CEE002", PatrimonyID: "PAT002", SerialNumber: "SN9", Hostname: "CEE-PC002",
		Owner: "Maria Santos", Sector: "Secretaria Executiva", Location: "Sala 102",
		Model: "HP EliteDesk", CPU: "i5", RAMGB: 8, StorageGB: 256, StorageType: "SSD",
		OS: "Windows 11", OSBuild: "22H2", OfficeVersion: "Office 2019", Antivirus: "Kaspersky",
		IPAddress: "192.168.1.101", MACAddress: "00:1B:44:11:3A:B8", AcquiredOn: "2023-03-20",
		WarrantyEnd: "2026-03-20", Status: StatusMaintenance, LastMaintenance: "2024-02-10",
		Notes: "", CreatedAt: created,
	}

	t.Run("full row", func(t *testing.T) {
		assert.Equal(t, original, AssetFromRow(original.Row(time.Now())))
	})

	t.Run("short row", func(t *testing.T) {
		got := AssetFromRow([]string{" CEE003 ", "PAT3"})
		assert.Equal(t, "CEE003", got.Tag)
		assert.Equal(t, "PAT3", got.PatrimonyID)
		assert.Equal(t, "", got.Hostname)
		assert.Equal(t, 0, got.RAMGB)
		assert.True(t, got.CreatedAt.IsZero())
	})

	t.Run("free text keeps its whitespace", func(t *testing.T) {
		row := make([]string, 23)
		row[0] = " CEE004 "
		row[7] = " Dell "
		row[9] = " 8 "
		row[19] = " 2026-01-01 "
		row[22] = "  line one\n"
		got := AssetFromRow(row)
		assert.Equal(t, "CEE004", got.Tag)
		assert.Equal(t, " Dell ", got.Model)
		assert.Equal(t, 8, got.RAMGB)
		assert.Equal(t, "2026-01-01", got.WarrantyEnd)
		assert.Equal(t, "  line one\n", got.Notes)
	})

	t.Run("loose numbers and labels", func(t *testing.T) {
		row := make([]string, 21)
		row[9] = "16 GB"
		row[10] = "abc"
		row[20] = "Ativo"
		got := AssetFromRow(row)
		assert.Equal(t, 16, got.RAMGB)
		assert.Equal(t, 0, got.StorageGB)
		assert.Equal(t, StatusActive, got.Status)
	})
}

func TestParseAssetStatus(t *testing.T) {
	tests := map[string]AssetStatus{
		"Active":     StatusActive,
		"ativo":      StatusActive,
		"Inativo":    StatusInactive,
		"Manutenção": StatusMaintenance,
		"DESCARTADO": StatusDiscarded,
		"":           "",
		" Lost ":     "Lost",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAssetStatus(in), in)
	}
	assert.True(t, StatusDiscarded.IsValid())
	assert.False(t, AssetStatus("Lost").IsValid())
}
