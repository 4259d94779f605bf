package artifact

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/seichimap/spoke-cli/internal/model"
)

// WriteSummary writes the run summary as indented JSON.
func WriteSummary(path string, summary *model.FactorySummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "artifact: marshal summary")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "artifact: write %s", path)
	}
	return nil
}

// ReadSummary loads a summary file through the defensive normalizer, so a
// hand-edited or older-format file degrades to zero values instead of
// failing the read.
func ReadSummary(path string) (*model.FactorySummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", path)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "artifact: parse %s", path)
	}

	summary := NormalizeSummary(raw)
	if summary == nil {
		return nil, eris.Errorf("artifact: %s is not a factory summary", path)
	}
	return summary, nil
}

// NormalizeSummary coerces a loosely typed JSON object into a summary.
// Returns nil when the object cannot be a summary at all (no recognizable
// mode). Every other field degrades individually: missing or mistyped
// numbers become zero, malformed list entries are dropped.
func NormalizeSummary(raw map[string]any) *model.FactorySummary {
	mode, _ := raw["mode"].(string)
	if mode != string(model.ModePreview) && mode != string(model.ModeGenerate) {
		return nil
	}

	summary := &model.FactorySummary{
		Mode:                 mode,
		SourcePostCount:      asInt(raw["sourcePostCount"]),
		CandidateCount:       asInt(raw["candidateCount"]),
		SelectedTopics:       asInt(raw["selectedTopics"]),
		GeneratedFiles:       asInt(raw["generatedFiles"]),
		SkippedExisting:      asInt(raw["skippedExisting"]),
		SkippedLowConfidence: asInt(raw["skippedLowConfidence"]),
		Errors:               asStringSlice(raw["errors"]),
		Topics:               asStringSlice(raw["topics"]),
		Files:                asStringSlice(raw["files"]),
	}

	if items, ok := raw["skipped"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			reason, _ := obj["reason"].(string)
			if reason == "" {
				continue
			}
			value, _ := obj["value"].(string)
			summary.Skipped = append(summary.Skipped, model.SkippedItem{Reason: reason, Value: value})
		}
	}

	if prURL, ok := raw["prUrl"].(string); ok && prURL != "" {
		summary.PRURL = &prURL
	}

	return summary
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
