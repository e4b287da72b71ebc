package api

import "github.com/dfryer1193/alttext/media/domain"

// Response is the envelope returned by every alt text endpoint.
// Data holds a payload on success and an error message on failure.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type UpdateSummary struct {
	Total               int `json:"total"`
	Updated             int `json:"updated"`
	Skipped             int `json:"skipped"`
	TotalSizesProcessed int `json:"total_sizes_processed"`
	MetadataIssues      int `json:"metadata_issues"`
	Failed              int `json:"failed"`
}

func NewUpdateSummary(s *domain.Summary) UpdateSummary {
	return UpdateSummary{
		Total:               s.Total,
		Updated:             s.Updated,
		Skipped:             s.Skipped,
		TotalSizesProcessed: s.TotalSizesProcessed,
		MetadataIssues:      s.MetadataIssues,
		Failed:              s.Failed,
	}
}

type TitlePreview struct {
	File  string `json:"file"`
	Title string `json:"title"`
}
