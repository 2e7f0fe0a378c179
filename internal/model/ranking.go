package model

import "time"

// Components holds the four per-provider signal scores, each in [0,1].
type Components struct {
	Location float64 `json:"location"`
	Price    float64 `json:"price"`
	Quality  float64 `json:"quality"`
	Needs    float64 `json:"needs"`
}

// ScoredItem is the scoring engine's output for a single provider.
type ScoredItem struct {
	ProviderID string     `json:"provider_id"`
	FitScore   float64    `json:"fit_score"`
	Components Components `json:"components"`
	Reasons    []string   `json:"reasons,omitempty"`
	Receipts   []Event    `json:"receipts"`
}

// RankingResult is the ranking engine's output: the originating query,
// the weight-profile name used, a timestamp derived from evidence (never
// wall-clock), and the ordered top-N scored items.
type RankingResult struct {
	Query       Query        `json:"query"`
	Preset      string       `json:"preset"`
	GeneratedAt string       `json:"generated_at"`
	Items       []ScoredItem `json:"items"`
}

// RunStatus represents the outcome of a recorded rank run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the operational record of one rank invocation. It lives outside
// the determinism boundary: the ranking artifact never depends on it.
type Run struct {
	ID          string    `json:"id"`
	Preset      string    `json:"preset"`
	Query       Query     `json:"query"`
	Status      RunStatus `json:"status"`
	ResultSHA   string    `json:"result_sha256"`
	ItemCount   int       `json:"item_count"`
	GeneratedAt string    `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}
