package dto

// ImportResponse is the JSON structure returned by POST /api/v1/import.
//
// Counts mirror models.ImportSummary: rows read from the spreadsheet,
// operations actually persisted, and operations skipped because an
// identical one already existed for the user.
type ImportResponse struct {
	TotalRowsRead         int `json:"total_rows_read" example:"120"`
	TotalImported         int `json:"total_imported" example:"87"`
	TotalSkippedDuplicate int `json:"total_skipped_duplicate" example:"12"`
}
