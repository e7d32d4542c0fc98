package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

var baseTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func customer(id string, risk model.RiskCategory) model.Customer {
	return model.Customer{CustomerID: id, Name: id, Country: "US", RiskCategory: risk, OnboardedAt: baseTime}
}

func tx(id, custID string, amount float64) model.Transaction {
	return model.Transaction{TransactionID: id, CustomerID: custID, Amount: amount, OccurredAt: baseTime, TxType: model.TxTransfer, TxCountry: "US"}
}

func alert(id, custID string, typ model.AlertType, flag int) model.Alert {
	return model.Alert{AlertID: id, CustomerID: custID, AlertType: typ, CreatedAt: baseTime, PriorityFlag: flag}
}

func TestPrepare_BasicJoin(t *testing.T) {
	alerts := []model.Alert{
		alert("a-1", "c-1", model.AlertAML, 1),
		alert("a-2", "c-2", model.AlertKYC, 0),
		alert("a-3", "c-3", model.AlertAML, 1),
	}
	customers := []model.Customer{
		customer("c-1", model.RiskHigh),
		customer("c-2", model.RiskLow),
		customer("c-3", model.RiskMedium),
	}
	transactions := []model.Transaction{
		tx("t-1", "c-1", 100),
		tx("t-2", "c-2", 50),
		tx("t-3", "c-3", 75),
	}

	m, err := Prepare(alerts, customers, transactions)
	require.NoError(t, err)

	require.Len(t, m.X, 3)
	require.Equal(t, Names, m.Names)
	assert.Equal(t, []float64{1, 0, 1}, m.Y)

	// Row layout: risk_num, is_aml, is_fraud, mean_tx_amount, max_tx_amount, tx_count
	assert.Equal(t, []float64{2, 1, 0, 100, 100, 1}, m.X[0])
	assert.Equal(t, []float64{0, 0, 0, 50, 50, 1}, m.X[1])
	assert.Equal(t, []float64{1, 1, 0, 75, 75, 1}, m.X[2])
}

func TestPrepare_AggregatesPerCustomer(t *testing.T) {
	alerts := []model.Alert{alert("a-1", "c-1", model.AlertFraud, 1)}
	customers := []model.Customer{customer("c-1", model.RiskMedium)}
	transactions := []model.Transaction{
		tx("t-1", "c-1", 10),
		tx("t-2", "c-1", 30),
		tx("t-3", "c-1", 20),
	}

	m, err := Prepare(alerts, customers, transactions)
	require.NoError(t, err)

	row := m.X[0]
	assert.InDelta(t, 20, row[3], 1e-9) // mean
	assert.InDelta(t, 30, row[4], 1e-9) // max
	assert.InDelta(t, 3, row[5], 1e-9)  // count
	assert.Equal(t, 1.0, row[2])        // is_fraud
	assert.Equal(t, 0.0, row[1])        // is_aml
}

func TestPrepare_ImputesCustomersWithoutTransactions(t *testing.T) {
	alerts := []model.Alert{
		alert("a-1", "c-1", model.AlertAML, 1),
		alert("a-2", "c-2", model.AlertKYC, 0),
	}
	customers := []model.Customer{
		customer("c-1", model.RiskHigh),
		customer("c-2", model.RiskLow), // no transactions
	}
	transactions := []model.Transaction{
		tx("t-1", "c-1", 100),
		tx("t-2", "c-1", 300),
	}

	m, err := Prepare(alerts, customers, transactions)
	require.NoError(t, err)

	// c-2 gets the alert-row column mean (only a-1 contributes: 200) and count 0.
	row := m.X[1]
	assert.InDelta(t, 200, row[3], 1e-9)
	assert.InDelta(t, 300, row[4], 1e-9)
	assert.Equal(t, 0.0, row[5])
}

func TestPrepare_FillIgnoresCustomersWithoutAlerts(t *testing.T) {
	alerts := []model.Alert{
		alert("a-1", "c-1", model.AlertAML, 1),
		alert("a-2", "c-1", model.AlertKYC, 0),
		alert("a-3", "c-2", model.AlertKYC, 0), // c-2 has no transactions
	}
	customers := []model.Customer{
		customer("c-1", model.RiskHigh),
		customer("c-2", model.RiskLow),
		customer("c-3", model.RiskMedium), // transacts but never alerts
	}
	transactions := []model.Transaction{
		tx("t-1", "c-1", 100),
		tx("t-2", "c-3", 400),
	}

	m, err := Prepare(alerts, customers, transactions)
	require.NoError(t, err)

	// The fill is the column mean over alert rows, so c-3's 400 never enters
	// it: a-3 gets 100, not (100+400)/2.
	assert.InDelta(t, 100, m.X[2][3], 1e-9)
	assert.InDelta(t, 100, m.X[2][4], 1e-9)
}

func TestPrepare_FillWeightsByAlertCount(t *testing.T) {
	alerts := []model.Alert{
		alert("a-1", "c-1", model.AlertAML, 1),
		alert("a-2", "c-1", model.AlertKYC, 0),
		alert("a-3", "c-4", model.AlertFraud, 1),
		alert("a-4", "c-2", model.AlertKYC, 0), // c-2 has no transactions
	}
	customers := []model.Customer{
		customer("c-1", model.RiskHigh),
		customer("c-2", model.RiskLow),
		customer("c-4", model.RiskMedium),
	}
	transactions := []model.Transaction{
		tx("t-1", "c-1", 100),
		tx("t-2", "c-4", 400),
	}

	m, err := Prepare(alerts, customers, transactions)
	require.NoError(t, err)

	// c-1 alerts twice, so its mean counts twice: (100+100+400)/3 = 200.
	assert.InDelta(t, 200, m.X[3][3], 1e-9)
	assert.InDelta(t, 200, m.X[3][4], 1e-9)
}

func TestPrepare_NoTransactionsAtAll(t *testing.T) {
	alerts := []model.Alert{alert("a-1", "c-1", model.AlertKYC, 0)}
	customers := []model.Customer{customer("c-1", model.RiskLow)}

	m, err := Prepare(alerts, customers, nil)
	require.NoError(t, err)

	row := m.X[0]
	assert.Equal(t, 0.0, row[3])
	assert.Equal(t, 0.0, row[4])
	assert.Equal(t, 0.0, row[5])
}

func TestPrepare_AlertTypeCaseInsensitive(t *testing.T) {
	alerts := []model.Alert{alert("a-1", "c-1", model.AlertType("aml"), 1)}
	customers := []model.Customer{customer("c-1", model.RiskLow)}

	m, err := Prepare(alerts, customers, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.X[0][1])
}

func TestPrepare_UnknownCustomer(t *testing.T) {
	alerts := []model.Alert{alert("a-1", "ghost", model.AlertAML, 1)}
	customers := []model.Customer{customer("c-1", model.RiskLow)}

	_, err := Prepare(alerts, customers, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown customer")
}

func TestPrepare_UnknownRiskCategory(t *testing.T) {
	alerts := []model.Alert{alert("a-1", "c-1", model.AlertAML, 1)}
	customers := []model.Customer{customer("c-1", model.RiskCategory("Extreme"))}

	_, err := Prepare(alerts, customers, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk category")
}

func TestPrepare_NoAlerts(t *testing.T) {
	_, err := Prepare(nil, []model.Customer{customer("c-1", model.RiskLow)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no alerts")
}

func TestPrepare_RowOrderMatchesAlerts(t *testing.T) {
	alerts := []model.Alert{
		alert("a-3", "c-1", model.AlertKYC, 0),
		alert("a-1", "c-1", model.AlertAML, 1),
		alert("a-2", "c-1", model.AlertFraud, 0),
	}
	customers := []model.Customer{customer("c-1", model.RiskMedium)}

	m, err := Prepare(alerts, customers, nil)
	require.NoError(t, err)

	// is_aml column reflects the alert order exactly.
	assert.Equal(t, 0.0, m.X[0][1])
	assert.Equal(t, 1.0, m.X[1][1])
	assert.Equal(t, 0.0, m.X[2][1])
	assert.Equal(t, []float64{0, 1, 0}, m.Y)
}
