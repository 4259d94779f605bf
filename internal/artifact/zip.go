package artifact

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/model"
)

// ExtractSummaryFromZip pulls the run summary out of a downloaded artifact.
// The payload may be a bare JSON file or a zip archive, depending on how it
// was produced; both are handled. A nil summary with nil error means no
// summary exists yet — common while the run is still uploading.
func ExtractSummaryFromZip(buf []byte) (*model.FactorySummary, error) {
	// Some endpoints hand back the file unwrapped.
	var raw map[string]any
	if err := json.Unmarshal(buf, &raw); err == nil {
		return NormalizeSummary(raw), nil
	}

	reader, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		// Neither JSON nor a zip. Nothing to extract, but absence is a
		// representable state here, not a failure.
		zap.L().Debug("artifact: payload is neither json nor zip", zap.Int("bytes", len(buf)))
		return nil, nil
	}

	file := pickSummaryEntry(reader)
	if file == nil {
		zap.L().Debug("artifact: zip has no usable entry", zap.Int("entries", len(reader.File)))
		return nil, nil
	}

	rc, err := file.Open()
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: open zip entry %s", file.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read zip entry %s", file.Name)
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		zap.L().Debug("artifact: zip entry is not JSON", zap.String("entry", file.Name))
		return nil, nil
	}
	return NormalizeSummary(raw), nil
}

// pickSummaryEntry chooses the archive entry most likely to be the summary:
// a nested summary.json first, then any name ending in summary.json, then
// the first regular file as a last resort.
func pickSummaryEntry(reader *zip.Reader) *zip.File {
	var first *zip.File
	var suffixMatch *zip.File

	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(f.Name, "/summary.json") {
			return f
		}
		if strings.HasSuffix(f.Name, "summary.json") && suffixMatch == nil {
			suffixMatch = f
		}
		if first == nil {
			first = f
		}
	}

	if suffixMatch != nil {
		return suffixMatch
	}
	return first
}
