package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/config"
	"github.com/sells-group/triage-cli/internal/dataset"
	"github.com/sells-group/triage-cli/internal/report"
)

func testConfig(t *testing.T, seed int64) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Data: config.DataConfig{
			RawDir:    filepath.Join(base, "raw"),
			OutputDir: filepath.Join(base, "outputs"),
		},
		Generate: config.GenerateConfig{
			Seed:         seed,
			Customers:    60,
			Transactions: 500,
			Alerts:       200,
		},
		Model:  config.ModelConfig{MaxIter: 1000, Tol: 1e-8, L2: 1.0},
		Report: config.ReportConfig{HistogramBins: 10, TopN: 5},
		Log:    config.LogConfig{Level: "info", Format: "console"},
	}
}

func runOnce(t *testing.T, seed int64) (scoresCSV []byte, cfg *config.Config) {
	t.Helper()
	cfg = testConfig(t, seed)
	require.NoError(t, generateData(cfg))
	require.NoError(t, scoreAlerts(cfg, false))

	data, err := os.ReadFile(filepath.Join(cfg.Data.OutputDir, dataset.ScoresFile))
	require.NoError(t, err)
	return data, cfg
}

func TestPipeline_EndToEnd(t *testing.T) {
	data, cfg := runOnce(t, 42)

	// One output row per alert, header included, order preserved.
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, cfg.Generate.Alerts+1)
	assert.Equal(t, []string{"alert_id", "customer_id", "alert_type", "priority_score"}, records[0])

	alerts, err := dataset.ReadAlerts(cfg.Data.RawDir)
	require.NoError(t, err)
	for i, rec := range records[1:] {
		assert.Equal(t, alerts[i].AlertID, rec[0], "row %d out of order", i)
	}

	// Every score parses and lies in [0, 1].
	for i, rec := range records[1:] {
		score, err := strconv.ParseFloat(rec[3], 64)
		require.NoError(t, err, "row %d", i)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}

	// The distribution plot exists and is non-empty.
	info, err := os.Stat(filepath.Join(cfg.Data.OutputDir, report.HistogramFile))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPipeline_DeterministicAcrossRuns(t *testing.T) {
	first, _ := runOnce(t, 42)
	second, _ := runOnce(t, 42)
	assert.Equal(t, string(first), string(second))
}

func TestPipeline_SeedChangesScores(t *testing.T) {
	first, _ := runOnce(t, 1)
	second, _ := runOnce(t, 2)
	assert.NotEqual(t, string(first), string(second))
}

func TestPipeline_XLSXExport(t *testing.T) {
	cfg := testConfig(t, 7)
	require.NoError(t, generateData(cfg))
	require.NoError(t, scoreAlerts(cfg, true))

	info, err := os.Stat(filepath.Join(cfg.Data.OutputDir, dataset.ScoresXLSXFile))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPipeline_MissingRawData(t *testing.T) {
	cfg := testConfig(t, 7)
	err := scoreAlerts(cfg, false)
	require.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), version)
}
