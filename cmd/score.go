package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/config"
	"github.com/sells-group/triage-cli/internal/dataset"
	"github.com/sells-group/triage-cli/internal/feature"
	"github.com/sells-group/triage-cli/internal/model"
	"github.com/sells-group/triage-cli/internal/report"
	"github.com/sells-group/triage-cli/internal/triage"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Train the triage model and score every alert",
	Long: `Load the raw CSVs, prepare features (customer risk rating, alert type
flags, per-customer transaction aggregates), train a logistic regression on
the priority_flag labels, and write one priority score per alert.

Outputs: priority_scores.csv and score_distribution.png under the output
directory, a summary, and a top-N table on stdout.

Examples:
  # Score with config defaults
  triage score

  # Custom directories, xlsx alongside the CSV
  triage score --raw-dir data/raw --out-dir data/outputs --xlsx

  # Wider histogram bins, longer console table
  triage score --bins 10 --top 25`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("raw-dir", "", "directory holding the raw CSVs (overrides config)")
	f.String("out-dir", "", "directory for score outputs (overrides config)")
	f.Bool("xlsx", false, "also write priority_scores.xlsx")
	f.Int("bins", 0, "histogram bin count (overrides config)")
	f.Int("top", 0, "rows in the top-alerts table (overrides config)")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	applyScoreOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	xlsxOut, _ := cmd.Flags().GetBool("xlsx")
	return scoreAlerts(cfg, xlsxOut)
}

// applyScoreOverrides folds scoring CLI flags into the config.
func applyScoreOverrides(cmd *cobra.Command, c *config.Config) {
	if v, _ := cmd.Flags().GetString("raw-dir"); v != "" {
		c.Data.RawDir = v
	}
	if v, _ := cmd.Flags().GetString("out-dir"); v != "" {
		c.Data.OutputDir = v
	}
	if v, _ := cmd.Flags().GetInt("bins"); v > 0 {
		c.Report.HistogramBins = v
	}
	if v, _ := cmd.Flags().GetInt("top"); v > 0 {
		c.Report.TopN = v
	}
}

// scoreAlerts runs the load -> features -> fit -> predict -> persist stages.
func scoreAlerts(c *config.Config, xlsxOut bool) error {
	log := zap.L().With(zap.String("command", "score"))

	alerts, err := dataset.ReadAlerts(c.Data.RawDir)
	if err != nil {
		return err
	}
	customers, err := dataset.ReadCustomers(c.Data.RawDir)
	if err != nil {
		return err
	}
	transactions, err := dataset.ReadTransactions(c.Data.RawDir)
	if err != nil {
		return err
	}

	log.Info("raw data loaded",
		zap.Int("alerts", len(alerts)),
		zap.Int("customers", len(customers)),
		zap.Int("transactions", len(transactions)),
	)

	m, err := feature.Prepare(alerts, customers, transactions)
	if err != nil {
		return err
	}

	mdl, err := triage.Fit(m.Names, m.X, m.Y, triage.Options{
		MaxIter: c.Model.MaxIter,
		Tol:     c.Model.Tol,
		L2:      c.Model.L2,
	})
	if err != nil {
		return err
	}

	scores, err := mdl.Predict(m.X)
	if err != nil {
		return err
	}

	scored := make([]model.ScoredAlert, len(alerts))
	for i, a := range alerts {
		scored[i] = model.ScoredAlert{
			AlertID:       a.AlertID,
			CustomerID:    a.CustomerID,
			AlertType:     a.AlertType,
			PriorityScore: scores[i],
		}
	}

	if err := dataset.WriteScores(c.Data.OutputDir, scored); err != nil {
		return err
	}
	if xlsxOut {
		if err := dataset.WriteScoresXLSX(c.Data.OutputDir, scored); err != nil {
			return err
		}
	}
	if err := report.WriteHistogram(c.Data.OutputDir, scored, c.Report.HistogramBins); err != nil {
		return err
	}

	printScoreSummary(scored, c)
	return nil
}

func printScoreSummary(scored []model.ScoredAlert, c *config.Config) {
	s := report.Summarize(scored)

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Alerts scored: %d\n", s.Count)
	fmt.Printf("Score range:   %.4f - %.4f\n", s.Min, s.Max)
	fmt.Printf("Mean / median: %.4f / %.4f\n", s.Mean, s.Median)
	fmt.Printf("90th pctile:   %.4f\n", s.P90)
	fmt.Printf("\nTop %d alerts by priority:\n", c.Report.TopN)
	report.WriteTopTable(os.Stdout, scored, c.Report.TopN)

	fmt.Printf("\nWrote %d priority scores to %s\n",
		s.Count, filepath.Join(c.Data.OutputDir, dataset.ScoresFile))
	fmt.Printf("Wrote distribution plot to %s\n",
		filepath.Join(c.Data.OutputDir, report.HistogramFile))
}
