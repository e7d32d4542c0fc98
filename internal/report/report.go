// Package report renders the scored alerts: summary statistics, the score
// distribution plot, and the top-N console table.
package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/triage-cli/internal/model"
)

// Summary holds distribution statistics for a score run.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes distribution statistics over the scores.
func Summarize(scored []model.ScoredAlert) Summary {
	if len(scored) == 0 {
		return Summary{}
	}

	xs := make([]float64, len(scored))
	for i, s := range scored {
		xs[i] = s.PriorityScore
	}
	sort.Float64s(xs)

	return Summary{
		Count:  len(xs),
		Mean:   stat.Mean(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, xs, nil),
		Min:    xs[0],
		Max:    xs[len(xs)-1],
	}
}

// TopN returns the n highest-scoring alerts, ties broken by input order.
func TopN(scored []model.ScoredAlert, n int) []model.ScoredAlert {
	ranked := append([]model.ScoredAlert(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// WriteTopTable renders the top-N alerts as a console table.
func WriteTopTable(w io.Writer, scored []model.ScoredAlert, n int) {
	top := TopN(scored, n)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Alert ID", "Customer ID", "Type", "Score"})
	for i, s := range top {
		table.Append([]string{
			strconv.Itoa(i + 1),
			s.AlertID,
			s.CustomerID,
			string(s.AlertType),
			strconv.FormatFloat(s.PriorityScore, 'f', 4, 64),
		})
	}
	table.Render()
}
