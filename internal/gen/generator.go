// Package gen produces the synthetic customers, transactions, and alerts
// the triage pipeline trains on. All randomness flows through a single
// seeded source, so a fixed seed reproduces identical datasets.
package gen

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/triage-cli/internal/model"
)

// Dataset bundles one generated population.
type Dataset struct {
	Customers    []model.Customer
	Transactions []model.Transaction
	Alerts       []model.Alert
}

// Generator emits synthetic triage data.
type Generator struct {
	rng    *rand.Rand
	scn    Scenario
	anchor time.Time
}

// New creates a Generator for the given seed and scenario.
func New(seed int64, scn Scenario) (*Generator, error) {
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	anchor, err := scn.anchor()
	if err != nil {
		return nil, err
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		scn:    scn,
		anchor: anchor,
	}, nil
}

// Generate produces a full dataset with referential integrity: every
// transaction and alert references a generated customer, and every
// transaction-backed alert references a generated transaction.
func (g *Generator) Generate(customers, transactions, alerts int) (*Dataset, error) {
	if customers <= 0 {
		return nil, eris.Errorf("gen: customer count must be positive (got %d)", customers)
	}
	if transactions < 0 {
		return nil, eris.Errorf("gen: transaction count must be non-negative (got %d)", transactions)
	}
	if alerts <= 0 {
		return nil, eris.Errorf("gen: alert count must be positive (got %d)", alerts)
	}

	ds := &Dataset{
		Customers:    g.genCustomers(customers),
		Transactions: nil,
		Alerts:       nil,
	}
	ds.Transactions = g.genTransactions(ds.Customers, transactions)
	ds.Alerts = g.genAlerts(ds.Customers, ds.Transactions, alerts)

	zap.L().Info("gen: dataset generated",
		zap.Int("customers", len(ds.Customers)),
		zap.Int("transactions", len(ds.Transactions)),
		zap.Int("alerts", len(ds.Alerts)),
	)

	return ds, nil
}

var (
	firstNames = []string{
		"Ada", "Bruno", "Carmen", "Dmitri", "Elena", "Farid", "Grace", "Hugo",
		"Ines", "Jonas", "Katya", "Liam", "Mei", "Nadia", "Omar", "Priya",
		"Quentin", "Rosa", "Samir", "Tomas", "Uma", "Viktor", "Wei", "Yusuf",
	}
	lastNames = []string{
		"Alvarez", "Becker", "Chen", "Dubois", "Eriksen", "Fischer", "Garcia",
		"Hansen", "Ivanov", "Jensen", "Kaur", "Lindqvist", "Moreau", "Novak",
		"Okafor", "Petrov", "Quintero", "Rossi", "Silva", "Tanaka", "Ueda",
		"Vargas", "Weber", "Yamamoto",
	}
	countries = []string{"US", "GB", "DE", "FR", "NL", "SG", "AE", "KY", "PA", "BR"}
)

// id returns a UUIDv4 drawn from the generator's seeded source.
func (g *Generator) id() string {
	u, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		// math/rand.Rand.Read never fails.
		panic(err)
	}
	return u.String()
}

// pickRisk samples a risk category from the scenario mix.
func (g *Generator) pickRisk() model.RiskCategory {
	m := g.scn.RiskMix
	x := g.rng.Float64() * (m.Low + m.Medium + m.High)
	switch {
	case x < m.Low:
		return model.RiskLow
	case x < m.Low+m.Medium:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// pickAlertType samples an alert type from the scenario mix.
func (g *Generator) pickAlertType() model.AlertType {
	m := g.scn.AlertTypeMix
	x := g.rng.Float64() * (m.AML + m.KYC + m.Fraud)
	switch {
	case x < m.AML:
		return model.AlertAML
	case x < m.AML+m.KYC:
		return model.AlertKYC
	default:
		return model.AlertFraud
	}
}

// timeInPeriod returns a timestamp uniformly inside the scenario window,
// at second precision so the CSV round trip is lossless.
func (g *Generator) timeInPeriod() time.Time {
	periodSecs := int64(g.scn.PeriodDays) * 24 * 60 * 60
	offset := time.Duration(g.rng.Int63n(periodSecs)) * time.Second
	return g.anchor.Add(-offset)
}

func (g *Generator) genCustomers(n int) []model.Customer {
	out := make([]model.Customer, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[g.rng.Intn(len(firstNames))]
		last := lastNames[g.rng.Intn(len(lastNames))]
		// Onboarding predates the activity window.
		onboarded := g.anchor.AddDate(0, 0, -g.scn.PeriodDays-g.rng.Intn(4*365))
		out = append(out, model.Customer{
			CustomerID:   g.id(),
			Name:         first + " " + last,
			Country:      countries[g.rng.Intn(len(countries))],
			RiskCategory: g.pickRisk(),
			OnboardedAt:  onboarded,
		})
	}
	return out
}

var txTypes = []model.TxType{model.TxDeposit, model.TxWithdrawal, model.TxTransfer, model.TxPurchase}

func (g *Generator) genTransactions(customers []model.Customer, n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		c := customers[g.rng.Intn(len(customers))]

		// Log-normal amount, rounded to cents. High-risk customers skew
		// larger, which gives the label a learnable correlate.
		mu := g.scn.AmountMeanLog + 0.35*c.RiskCategory.Num()
		amount := math.Exp(mu + g.scn.AmountSigmaLog*g.rng.NormFloat64())
		amount = math.Round(amount*100) / 100

		txCountry := c.Country
		if g.rng.Float64() < 0.15 {
			txCountry = countries[g.rng.Intn(len(countries))]
		}

		out = append(out, model.Transaction{
			TransactionID: g.id(),
			CustomerID:    c.CustomerID,
			Amount:        amount,
			OccurredAt:    g.timeInPeriod(),
			TxType:        txTypes[g.rng.Intn(len(txTypes))],
			TxCountry:     txCountry,
		})
	}
	return out
}

func (g *Generator) genAlerts(customers []model.Customer, transactions []model.Transaction, n int) []model.Alert {
	custByID := make(map[string]model.Customer, len(customers))
	for _, c := range customers {
		custByID[c.CustomerID] = c
	}

	out := make([]model.Alert, 0, n)
	for i := 0; i < n; i++ {
		alertType := g.pickAlertType()
		if len(transactions) == 0 && alertType != model.AlertKYC {
			alertType = model.AlertKYC
		}

		var (
			cust    model.Customer
			txID    string
			txAmt   float64
			created time.Time
		)
		if alertType == model.AlertKYC {
			// Periodic review alerts attach to a customer, not a transaction.
			cust = customers[g.rng.Intn(len(customers))]
			created = g.timeInPeriod()
		} else {
			tx := transactions[g.rng.Intn(len(transactions))]
			cust = custByID[tx.CustomerID]
			txID = tx.TransactionID
			txAmt = tx.Amount
			// Monitoring fires shortly after the transaction.
			created = tx.OccurredAt.Add(time.Duration(1+g.rng.Intn(72)) * time.Hour)
		}

		out = append(out, model.Alert{
			AlertID:       g.id(),
			CustomerID:    cust.CustomerID,
			TransactionID: txID,
			AlertType:     alertType,
			CreatedAt:     created,
			PriorityFlag:  g.label(cust, alertType, txAmt),
		})
	}
	return out
}

// label samples the training label from a latent logistic model over the
// true drivers, so the fitted classifier has real signal to recover.
func (g *Generator) label(c model.Customer, t model.AlertType, amount float64) int {
	z := -2.6
	z += 1.1 * c.RiskCategory.Num()
	switch t {
	case model.AlertAML:
		z += 1.4
	case model.AlertFraud:
		z += 0.9
	}
	if amount > 0 {
		z += 0.25 * math.Log1p(amount/1000)
	}
	p := 1 / (1 + math.Exp(-z))
	if g.rng.Float64() < p {
		return 1
	}
	return 0
}
