// Package dataset reads and writes the flat tabular files the pipeline
// consumes and produces. Readers are strict: a malformed row terminates
// the run with an error naming the file and line.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/triage-cli/internal/model"
)

// Conventional file names under the raw and output directories.
const (
	CustomersFile    = "customers.csv"
	TransactionsFile = "transactions.csv"
	AlertsFile       = "alerts.csv"
	ScoresFile       = "priority_scores.csv"
)

var (
	customerHeader    = []string{"customer_id", "name", "country", "risk_category", "onboarded_at"}
	transactionHeader = []string{"transaction_id", "customer_id", "amount", "occurred_at", "tx_type", "tx_country"}
	alertHeader       = []string{"alert_id", "customer_id", "transaction_id", "alert_type", "created_at", "priority_flag"}
	scoreHeader       = []string{"alert_id", "customer_id", "alert_type", "priority_score"}
)

// WriteCustomers writes customers.csv into dir.
func WriteCustomers(dir string, customers []model.Customer) error {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			c.CustomerID,
			c.Name,
			c.Country,
			string(c.RiskCategory),
			c.OnboardedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(filepath.Join(dir, CustomersFile), customerHeader, rows)
}

// WriteTransactions writes transactions.csv into dir.
func WriteTransactions(dir string, txs []model.Transaction) error {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{
			t.TransactionID,
			t.CustomerID,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.OccurredAt.UTC().Format(time.RFC3339),
			string(t.TxType),
			t.TxCountry,
		})
	}
	return writeCSV(filepath.Join(dir, TransactionsFile), transactionHeader, rows)
}

// WriteAlerts writes alerts.csv into dir.
func WriteAlerts(dir string, alerts []model.Alert) error {
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{
			a.AlertID,
			a.CustomerID,
			a.TransactionID,
			string(a.AlertType),
			a.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(a.PriorityFlag),
		})
	}
	return writeCSV(filepath.Join(dir, AlertsFile), alertHeader, rows)
}

// WriteScores writes priority_scores.csv into dir, preserving row order.
func WriteScores(dir string, scored []model.ScoredAlert) error {
	rows := make([][]string, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, []string{
			s.AlertID,
			s.CustomerID,
			string(s.AlertType),
			strconv.FormatFloat(s.PriorityScore, 'f', 6, 64),
		})
	}
	return writeCSV(filepath.Join(dir, ScoresFile), scoreHeader, rows)
}

// ReadCustomers loads customers.csv from dir.
func ReadCustomers(dir string) ([]model.Customer, error) {
	path := filepath.Join(dir, CustomersFile)
	rows, err := readCSV(path, customerHeader)
	if err != nil {
		return nil, err
	}

	out := make([]model.Customer, 0, len(rows))
	for i, row := range rows {
		onboarded, err := time.Parse(time.RFC3339, row[4])
		if err != nil {
			return nil, rowErr(path, i, err, "parse onboarded_at")
		}
		out = append(out, model.Customer{
			CustomerID:   row[0],
			Name:         row[1],
			Country:      row[2],
			RiskCategory: model.RiskCategory(row[3]),
			OnboardedAt:  onboarded,
		})
	}
	return out, nil
}

// ReadTransactions loads transactions.csv from dir.
func ReadTransactions(dir string) ([]model.Transaction, error) {
	path := filepath.Join(dir, TransactionsFile)
	rows, err := readCSV(path, transactionHeader)
	if err != nil {
		return nil, err
	}

	out := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		amount, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, rowErr(path, i, err, "parse amount")
		}
		occurred, err := time.Parse(time.RFC3339, row[3])
		if err != nil {
			return nil, rowErr(path, i, err, "parse occurred_at")
		}
		out = append(out, model.Transaction{
			TransactionID: row[0],
			CustomerID:    row[1],
			Amount:        amount,
			OccurredAt:    occurred,
			TxType:        model.TxType(row[4]),
			TxCountry:     row[5],
		})
	}
	return out, nil
}

// ReadAlerts loads alerts.csv from dir.
func ReadAlerts(dir string) ([]model.Alert, error) {
	path := filepath.Join(dir, AlertsFile)
	rows, err := readCSV(path, alertHeader)
	if err != nil {
		return nil, err
	}

	out := make([]model.Alert, 0, len(rows))
	for i, row := range rows {
		created, err := time.Parse(time.RFC3339, row[4])
		if err != nil {
			return nil, rowErr(path, i, err, "parse created_at")
		}
		flag, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, rowErr(path, i, err, "parse priority_flag")
		}
		if flag != 0 && flag != 1 {
			return nil, eris.Errorf("dataset: %s row %d: priority_flag must be 0 or 1 (got %d)", filepath.Base(path), i+2, flag)
		}
		out = append(out, model.Alert{
			AlertID:       row[0],
			CustomerID:    row[1],
			TransactionID: row[2],
			AlertType:     model.AlertType(row[3]),
			CreatedAt:     created,
			PriorityFlag:  flag,
		})
	}
	return out, nil
}

// writeCSV writes header + rows to path, creating parent directories.
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "dataset: create dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "dataset: write header to %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "dataset: write row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "dataset: flush %s", path)
	}
	return f.Close()
}

// readCSV reads path, checks the header, and returns the data rows.
func readCSV(path string, wantHeader []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("dataset: %s is empty", filepath.Base(path))
	}

	header := records[0]
	if len(header) != len(wantHeader) {
		return nil, headerErr(path, wantHeader, header)
	}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			return nil, headerErr(path, wantHeader, header)
		}
	}

	return records[1:], nil
}

func headerErr(path string, want, got []string) error {
	return eris.Errorf("dataset: %s: unexpected header %v (want %v)", filepath.Base(path), got, want)
}

func rowErr(path string, row int, err error, action string) error {
	// row is zero-based over data rows; +2 accounts for the header line.
	return eris.Wrap(err, fmt.Sprintf("dataset: %s row %d: %s", filepath.Base(path), row+2, action))
}
