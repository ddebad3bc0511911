package dto

import "github.com/schoolhub/backend/internal/infrastructure/importer"

// ImportRequest carries the uploaded spreadsheet
type ImportRequest struct {
	File string `form:"file" binding:"required" swaggerignore:"true"`
}

// ImportResponse represents the response from a bulk import
// @Description Response from a student bulk import
type ImportResponse struct {
	Total     int                 `json:"total" example:"120"`
	Imported  int                 `json:"imported" example:"117"`
	Skipped   int                 `json:"skipped" example:"3"`
	Errors    []importer.RowError `json:"errors"`
	Truncated bool                `json:"truncated,omitempty" example:"false"`
}

// NewImportResponse converts an importer result
func NewImportResponse(r *importer.Result) ImportResponse {
	return ImportResponse{
		Total:     r.Total,
		Imported:  r.Imported,
		Skipped:   r.Skipped,
		Errors:    r.Errors,
		Truncated: r.Truncated,
	}
}
