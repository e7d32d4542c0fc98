package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/sells-group/triage-cli/internal/model"
)

// HistogramFile is the distribution plot name under the output directory.
const HistogramFile = "score_distribution.png"

// Bin is one histogram bucket over the [0,1] score range.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// BinScores buckets the scores into equal-width bins over [0,1].
// A score of exactly 1.0 lands in the last bin.
func BinScores(scored []model.ScoredAlert, bins int) []Bin {
	if bins <= 0 {
		bins = 10
	}
	out := make([]Bin, bins)
	width := 1.0 / float64(bins)
	for i := range out {
		out[i].Low = float64(i) * width
		out[i].High = float64(i+1) * width
	}
	for _, s := range scored {
		idx := int(s.PriorityScore / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// WriteHistogram renders the score distribution as a PNG bar chart in dir.
func WriteHistogram(dir string, scored []model.ScoredAlert, bins int) error {
	if len(scored) == 0 {
		return eris.New("report: no scores to plot")
	}

	var bars []chart.Value
	for _, b := range BinScores(scored, bins) {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%.2f", b.Low),
			Value: float64(b.Count),
		})
	}

	barWidth := 900 / len(bars)
	if barWidth < 1 {
		barWidth = 1
	}

	barChart := chart.BarChart{
		Title: "Alert Priority Score Distribution",
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    1000,
		Height:   500,
		BarWidth: barWidth,
		Bars:     bars,
	}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf("%.0f", vf)
		}
		return ""
	}

	path := filepath.Join(dir, HistogramFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: create output dir %s", dir)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := barChart.Render(chart.PNG, f); err != nil {
		return eris.Wrapf(err, "report: render %s", path)
	}
	return f.Close()
}
