// Package feature turns the three raw tables into the numeric matrix the
// classifier trains on. Features are pure functions of the inputs: no
// state survives between calls.
package feature

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// Feature column names, in matrix order.
const (
	RiskNum      = "risk_num"
	IsAML        = "is_aml"
	IsFraud      = "is_fraud"
	MeanTxAmount = "mean_tx_amount"
	MaxTxAmount  = "max_tx_amount"
	TxCount      = "tx_count"
)

// Names lists the feature columns in matrix order.
var Names = []string{RiskNum, IsAML, IsFraud, MeanTxAmount, MaxTxAmount, TxCount}

// Matrix is the prepared training data. X rows align 1:1 with the input
// alerts, in input order. Y holds the priority_flag labels.
type Matrix struct {
	Names []string
	X     [][]float64
	Y     []float64
}

// txAgg holds per-customer transaction aggregates.
type txAgg struct {
	sum   float64
	max   float64
	count int
}

func (a txAgg) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Prepare joins alerts with customer risk ratings and per-customer
// transaction aggregates. Customers without transactions get the column
// mean over the alert rows imputed and a count of zero. An alert referencing
// an unknown customer is a referential integrity violation and terminates
// the run.
func Prepare(alerts []model.Alert, customers []model.Customer, transactions []model.Transaction) (*Matrix, error) {
	if len(alerts) == 0 {
		return nil, eris.New("feature: no alerts to prepare")
	}

	riskByCustomer := make(map[string]model.RiskCategory, len(customers))
	for _, c := range customers {
		riskByCustomer[c.CustomerID] = c.RiskCategory
	}

	aggs := make(map[string]txAgg, len(customers))
	var globalSum float64
	var globalMax float64
	for _, t := range transactions {
		a := aggs[t.CustomerID]
		a.sum += t.Amount
		a.count++
		if t.Amount > a.max {
			a.max = t.Amount
		}
		aggs[t.CustomerID] = a
		globalSum += t.Amount
		if t.Amount > globalMax {
			globalMax = t.Amount
		}
	}

	// Fill values are the column means over the joined alert rows: a
	// customer contributes once per alert, and customers that transact but
	// never alert contribute nothing.
	var meanFill, maxFill float64
	var filledRows int
	for _, a := range alerts {
		if agg, ok := aggs[a.CustomerID]; ok {
			meanFill += agg.mean()
			maxFill += agg.max
			filledRows++
		}
	}
	if filledRows > 0 {
		meanFill /= float64(filledRows)
		maxFill /= float64(filledRows)
	}

	m := &Matrix{
		Names: Names,
		X:     make([][]float64, 0, len(alerts)),
		Y:     make([]float64, 0, len(alerts)),
	}

	var imputed int
	for i, a := range alerts {
		risk, ok := riskByCustomer[a.CustomerID]
		if !ok {
			return nil, eris.Errorf("feature: alert %s (row %d) references unknown customer %s", a.AlertID, i, a.CustomerID)
		}
		riskNum := risk.Num()
		if riskNum < 0 {
			return nil, eris.Errorf("feature: alert %s: customer %s has unknown risk category %q", a.AlertID, a.CustomerID, risk)
		}

		meanAmt := meanFill
		maxAmt := maxFill
		txCount := 0.0
		if agg, ok := aggs[a.CustomerID]; ok {
			meanAmt = agg.mean()
			maxAmt = agg.max
			txCount = float64(agg.count)
		} else {
			imputed++
		}

		m.X = append(m.X, []float64{
			riskNum,
			boolFeature(isType(a.AlertType, model.AlertAML)),
			boolFeature(isType(a.AlertType, model.AlertFraud)),
			meanAmt,
			maxAmt,
			txCount,
		})
		m.Y = append(m.Y, float64(a.PriorityFlag))
	}

	zap.L().Debug("feature: matrix prepared",
		zap.Int("rows", len(m.X)),
		zap.Int("cols", len(Names)),
		zap.Int("imputed_customers", imputed),
	)

	return m, nil
}

// isType compares alert types case-insensitively, so "aml" in a
// hand-edited CSV still counts.
func isType(got, want model.AlertType) bool {
	return strings.EqualFold(string(got), string(want))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
