package model

// Event kinds recorded in the evidence store.
const (
	KindDocIngest = "doc_ingest"
	KindScoreRun  = "score_run"
)

// Source identifies the file an event or assertion was observed from.
type Source struct {
	Filename string `json:"filename"`
}

// Event is an immutable, timestamped observation: a document ingestion
// or a scoring run. Timestamps are ISO-8601 UTC with a Z suffix and are
// kept as strings so that serialization and ordering are byte-exact.
type Event struct {
	ObservedAt string  `json:"observed_at"`
	Kind       string  `json:"kind"`
	ProviderID *string `json:"provider_id"`
	Source     *Source `json:"source,omitempty"`
	SHA256     string  `json:"sha256"`
	SizeBytes  int64   `json:"size_bytes"`
}

// Assertion statuses.
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusUnknown = "unknown"
)

// Assertion subjects.
const (
	SubjectPricing    = "pricing"
	SubjectCompliance = "compliance"
	SubjectStars      = "stars"
)

// PricingClaim carries the verified pricing figures an assertion vouches for.
type PricingClaim struct {
	RAD  *float64 `json:"rad,omitempty"`
	MPIR *float64 `json:"mpir,omitempty"`
	DAP  *float64 `json:"dap,omitempty"`
}

// AssertionEvidence points at the document backing an assertion.
type AssertionEvidence struct {
	File              *string `json:"file"`
	Page              *int    `json:"page,omitempty"`
	TextExcerptSHA256 string  `json:"text_excerpt_sha256,omitempty"`
}

// Assertion is a timestamped claim about a provider with a
// pass/fail/unknown status and a confidence in [0,1].
type Assertion struct {
	ObservedAt string             `json:"observed_at"`
	ProviderID string             `json:"provider_id"`
	Subject    string             `json:"subject"`
	Claim      *PricingClaim      `json:"claim,omitempty"`
	Evidence   *AssertionEvidence `json:"evidence,omitempty"`
	Status     string             `json:"status"`
	Confidence float64            `json:"confidence"`
}
