package models

// SourceStatus classifies one source's outcome within a multi-source run.
type SourceStatus string

const (
	StatusSkipped   SourceStatus = "skipped"
	StatusRunning   SourceStatus = "running"
	StatusCompleted SourceStatus = "completed"
	StatusError     SourceStatus = "error"
)

// SourceResult is the per-source entry of a scrape report. A failing source
// never hides the results of the others.
type SourceResult struct {
	Status SourceStatus `json:"status"`
	Count  int          `json:"count"`
	Error  string       `json:"error,omitempty"`
}

// ScrapeReport summarizes one aggregated run across sources.
type ScrapeReport struct {
	Statuses   map[Source]*SourceResult `json:"status"`
	TotalFound int                      `json:"totalFound"`
	TotalSaved int                      `json:"totalSaved"`
	Skipped    int                      `json:"totalSkipped"`
	Preview    []*Property              `json:"properties"`
}
