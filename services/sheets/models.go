package sheetsservice

// Config holds the spreadsheet credentials kept in the local store.
type Config struct {
	APIKey        string `json:"api_key"`
	SpreadsheetID string `json:"spreadsheet_id"`
}

func (c Config) IsConfigured() bool {
	return c.APIKey != "" && c.SpreadsheetID != ""
}

type Status struct {
	IsConfigured     bool   `json:"is_configured"`
	HasAPIKey        bool   `json:"has_api_key"`
	HasSpreadsheetID bool   `json:"has_spreadsheet_id"`
	SheetName        string `json:"sheet_name"`
	SpreadsheetURL   string `json:"spreadsheet_url,omitempty"`
}

type ConfigureReq struct {
	Spreadsheet string `json:"spreadsheet" validate:"required"`
	APIKey      string `json:"api_key" validate:"required"`
}

type PushRes struct {
	Pushed int `json:"pushed"`
}

type PullRes struct {
	Pulled int `json:"pulled"`
}
