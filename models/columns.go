package models

import (
	"strconv"
	"strings"
	"time"
)

// AssetColumns is the fixed tabular layout shared by the spreadsheet mirror and
// the CSV export. The CSV export stops before the two trailing timestamps.
var AssetColumns = []string{
	"ID_Ativo",
	"Patrimonio_CIASC",
	"Serial_Number",
	"Hostname",
	"Usuario_Responsavel",
	"Setor_Comissão",
	"Localização",
	"Modelo",
	"CPU",
	"RAM_GB",
	"Armazenamento_GB",
	"Tipo_Armazenamento",
	"Sistema_Operacional",
	"Build_SO",
	"Office_Versão",
	"Antivirus",
	"Endereço_IP",
	"MAC_Address",
	"Data_Aquisição",
	"Garantia_Fim",
	"Status",
	"Ultima_Manutenção",
	"Observações",
	"Data_Cadastro",
	"Última_Atualização",
}

// ExportColumnCount is the number of leading columns written to CSV exports.
const ExportColumnCount = 23

// Row lays the asset out in AssetColumns order. syncedAt fills the last column.
func (a Asset) Row(syncedAt time.Time) []string {
	createdAt := ""
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return []string{
		a.Tag,
		a.PatrimonyID,
		a.SerialNumber,
		a.Hostname,
		a.Owner,
		a.Sector,
		a.Location,
		a.Model,
		a.CPU,
		strconv.Itoa(a.RAMGB),
		strconv.Itoa(a.StorageGB),
		a.StorageType,
		a.OS,
		a.OSBuild,
		a.OfficeVersion,
		a.Antivirus,
		a.IPAddress,
		a.MACAddress,
		a.AcquiredOn,
		a.WarrantyEnd,
		string(a.Status),
		a.LastMaintenance,
		a.Notes,
		createdAt,
		syncedAt.UTC().Format(time.RFC3339Nano),
	}
}

// AssetFromRow maps a positional row back into an asset. Missing trailing
// cells become empty strings or zero. The id is left unset. Free text cells
// are kept as written; the tag and the parsed cells are trimmed.
func AssetFromRow(row []string) Asset {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	trimmed := func(i int) string {
		return strings.TrimSpace(cell(i))
	}

	asset := Asset{
		Tag:             trimmed(0),
		PatrimonyID:     cell(1),
		SerialNumber:    cell(2),
		Hostname:        cell(3),
		Owner:           cell(4),
		Sector:          cell(5),
		Location:        cell(6),
		Model:           cell(7),
		CPU:             cell(8),
		RAMGB:           parseCount(trimmed(9)),
		StorageGB:       parseCount(trimmed(10)),
		StorageType:     cell(11),
		OS:              cell(12),
		OSBuild:         cell(13),
		OfficeVersion:   cell(14),
		Antivirus:       cell(15),
		IPAddress:       trimmed(16),
		MACAddress:      trimmed(17),
		AcquiredOn:      trimmed(18),
		WarrantyEnd:     trimmed(19),
		Status:          ParseAssetStatus(trimmed(20)),
		LastMaintenance: trimmed(21),
		Notes:           cell(22),
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, trimmed(23)); err == nil {
		asset.CreatedAt = createdAt.UTC()
	}
	return asset
}

// parseCount reads the leading integer of s, "16 GB" and "16.0" both give 16.
func parseCount(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
