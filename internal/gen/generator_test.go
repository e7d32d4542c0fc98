package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/triage-cli/internal/model"
)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	g, err := New(seed, DefaultScenario())
	require.NoError(t, err)
	return g
}

func TestGenerate_Counts(t *testing.T) {
	g := newTestGenerator(t, 1)
	ds, err := g.Generate(50, 400, 120)
	require.NoError(t, err)

	assert.Len(t, ds.Customers, 50)
	assert.Len(t, ds.Transactions, 400)
	assert.Len(t, ds.Alerts, 120)
}

func TestGenerate_ReferentialIntegrity(t *testing.T) {
	g := newTestGenerator(t, 2)
	ds, err := g.Generate(40, 300, 100)
	require.NoError(t, err)

	custIDs := make(map[string]bool, len(ds.Customers))
	for _, c := range ds.Customers {
		custIDs[c.CustomerID] = true
	}
	txByID := make(map[string]model.Transaction, len(ds.Transactions))
	for _, tx := range ds.Transactions {
		assert.True(t, custIDs[tx.CustomerID], "transaction %s references unknown customer", tx.TransactionID)
		txByID[tx.TransactionID] = tx
	}

	for _, a := range ds.Alerts {
		assert.True(t, custIDs[a.CustomerID], "alert %s references unknown customer", a.AlertID)

		if a.AlertType == model.AlertKYC {
			assert.Empty(t, a.TransactionID, "KYC alert %s should not reference a transaction", a.AlertID)
			continue
		}
		tx, ok := txByID[a.TransactionID]
		require.True(t, ok, "alert %s references unknown transaction", a.AlertID)
		// The alert belongs to the customer who made the triggering transaction.
		assert.Equal(t, tx.CustomerID, a.CustomerID)
		assert.True(t, a.CreatedAt.After(tx.OccurredAt), "alert fires after its transaction")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := newTestGenerator(t, 42).Generate(30, 200, 80)
	require.NoError(t, err)
	b, err := newTestGenerator(t, 42).Generate(30, 200, 80)
	require.NoError(t, err)

	assert.Equal(t, a.Customers, b.Customers)
	assert.Equal(t, a.Transactions, b.Transactions)
	assert.Equal(t, a.Alerts, b.Alerts)
}

func TestGenerate_SeedChangesData(t *testing.T) {
	a, err := newTestGenerator(t, 1).Generate(30, 200, 80)
	require.NoError(t, err)
	b, err := newTestGenerator(t, 2).Generate(30, 200, 80)
	require.NoError(t, err)

	assert.NotEqual(t, a.Customers, b.Customers)
}

func TestGenerate_LabelsHaveBothClasses(t *testing.T) {
	g := newTestGenerator(t, 3)
	ds, err := g.Generate(100, 1000, 500)
	require.NoError(t, err)

	var pos, neg int
	for _, a := range ds.Alerts {
		switch a.PriorityFlag {
		case 1:
			pos++
		case 0:
			neg++
		default:
			t.Fatalf("priority_flag out of range: %d", a.PriorityFlag)
		}
	}
	assert.Positive(t, pos, "expected some high-priority labels")
	assert.Positive(t, neg, "expected some low-priority labels")
}

func TestGenerate_AmountsPositive(t *testing.T) {
	g := newTestGenerator(t, 4)
	ds, err := g.Generate(20, 500, 50)
	require.NoError(t, err)

	for _, tx := range ds.Transactions {
		assert.Positive(t, tx.Amount)
	}
}

func TestGenerate_NoTransactionsForcesKYC(t *testing.T) {
	g := newTestGenerator(t, 5)
	ds, err := g.Generate(20, 0, 50)
	require.NoError(t, err)

	for _, a := range ds.Alerts {
		assert.Equal(t, model.AlertKYC, a.AlertType)
		assert.Empty(t, a.TransactionID)
	}
}

func TestGenerate_InvalidCounts(t *testing.T) {
	g := newTestGenerator(t, 6)

	_, err := g.Generate(0, 10, 10)
	assert.Error(t, err)

	_, err = g.Generate(10, -1, 10)
	assert.Error(t, err)

	_, err = g.Generate(10, 10, 0)
	assert.Error(t, err)
}

func TestGenerate_AllRiskCategoriesAppear(t *testing.T) {
	g := newTestGenerator(t, 7)
	ds, err := g.Generate(300, 0, 1)
	require.NoError(t, err)

	seen := map[model.RiskCategory]bool{}
	for _, c := range ds.Customers {
		seen[c.RiskCategory] = true
	}
	assert.True(t, seen[model.RiskLow])
	assert.True(t, seen[model.RiskMedium])
	assert.True(t, seen[model.RiskHigh])
}
