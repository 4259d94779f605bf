package model

// Skip reason codes recorded in run summaries. These are part of the summary
// contract read by CI tooling; changing a value breaks downstream parsing.
const (
	SkipLowConfidence    = "low-confidence"
	SkipCanonicalExists  = "canonical-exists"
	SkipInvalidSlug      = "invalid-slug"
	SkipSlugExists       = "slug-exists"
	SkipInvalidCandidate = "invalid-candidate"
)

// SkippedItem records one rejected candidate and why.
type SkippedItem struct {
	Reason string `json:"reason"`
	Value  string `json:"value"`
}

// FactorySummary is the machine-readable result of one factory run. It is
// written as summary.json, uploaded as a CI artifact, and parsed back by the
// result command, so the JSON shape is a stable contract.
type FactorySummary struct {
	Mode                 string        `json:"mode"`
	SourcePostCount      int           `json:"sourcePostCount"`
	CandidateCount       int           `json:"candidateCount"`
	SelectedTopics       int           `json:"selectedTopics"`
	GeneratedFiles       int           `json:"generatedFiles"`
	SkippedExisting      int           `json:"skippedExisting"`
	SkippedLowConfidence int           `json:"skippedLowConfidence"`
	Skipped              []SkippedItem `json:"skipped"`
	Errors               []string      `json:"errors"`
	Topics               []string      `json:"topics"`
	Files                []string      `json:"files"`
	PRURL                *string       `json:"prUrl"`
}
