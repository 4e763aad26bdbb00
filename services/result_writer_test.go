package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-scanner/models"
)

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.csv")

	rows := []models.ScanRow{
		{
			Ticker:     "AAPL",
			Name:       "Apple Inc.",
			Assessment: models.AssessmentUndervalued,
			PE:         models.Some(12.5),
			PB:         models.Some(0.9),
			PS:         models.Some(0.8),
			PEG:        models.Some(0.7),
			DE:         models.Some(0.4),
			FCFYield:   models.Some(9.1),
		},
		{
			Ticker:     "HOLD",
			Name:       "Holding Co",
			Assessment: models.AssessmentNeutral,
			// every ratio absent
		},
	}

	require.NoError(t, WriteResults(path, rows))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Ticker,Name,Assessment,P/E,P/B,P/S,PEG,D/E,FCF Yield", lines[0])
	assert.Equal(t, "AAPL,Apple Inc.,Undervalued,12.50,0.90,0.80,0.70,0.40,9.10", lines[1])
	// Absent ratios serialize as empty cells, never zero.
	assert.Equal(t, "HOLD,Holding Co,Neutral,,,,,,", lines[2])
}

func TestWriteResults_EmptyScanStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	require.NoError(t, WriteResults(path, nil))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "Ticker,Name,Assessment,P/E,P/B,P/S,PEG,D/E,FCF Yield",
		strings.TrimSpace(string(data)))
}

func TestWriteResults_UnwritablePath(t *testing.T) {
	assert.Error(t, WriteResults("/nonexistent/dir/scan.csv", nil))
}
