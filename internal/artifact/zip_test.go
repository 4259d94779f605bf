package artifact

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const summaryJSON = `{"mode":"generate","selectedTopics":2,"topics":["a-btr","b-ts"]}`

func TestExtractSummaryFromZipRawJSON(t *testing.T) {
	s, err := ExtractSummaryFromZip([]byte(summaryJSON))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.SelectedTopics)
}

func TestExtractSummaryFromZipNestedEntry(t *testing.T) {
	buf := buildZip(t, map[string]string{
		"spoke-summary/summary.json": summaryJSON,
		"spoke-summary/log.txt":      "noise",
	})

	s, err := ExtractSummaryFromZip(buf)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{"a-btr", "b-ts"}, s.Topics)
}

func TestExtractSummaryFromZipTopLevelEntry(t *testing.T) {
	buf := buildZip(t, map[string]string{"summary.json": summaryJSON})

	s, err := ExtractSummaryFromZip(buf)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "generate", s.Mode)
}

func TestExtractSummaryFromZipSuffixedEntry(t *testing.T) {
	buf := buildZip(t, map[string]string{
		"log.txt":          "noise that is not json",
		"run-summary.json": summaryJSON,
	})

	s, err := ExtractSummaryFromZip(buf)
	require.NoError(t, err)
	require.NotNil(t, s, "any entry ending in summary.json is preferred over the first file")
	assert.Equal(t, 2, s.SelectedTopics)
}

func TestExtractSummaryFromZipSingleUnnamedEntry(t *testing.T) {
	buf := buildZip(t, map[string]string{"whatever.json": summaryJSON})

	s, err := ExtractSummaryFromZip(buf)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestExtractSummaryFromZipNoSummaryYet(t *testing.T) {
	t.Run("non-json entry", func(t *testing.T) {
		buf := buildZip(t, map[string]string{"log.txt": "plain text"})
		s, err := ExtractSummaryFromZip(buf)
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("empty archive", func(t *testing.T) {
		buf := buildZip(t, nil)
		s, err := ExtractSummaryFromZip(buf)
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestExtractSummaryFromZipGarbage(t *testing.T) {
	// An unreadable payload means no summary exists yet, same as an empty
	// archive — never an error.
	s, err := ExtractSummaryFromZip([]byte("neither json nor zip"))
	require.NoError(t, err)
	assert.Nil(t, s)
}
