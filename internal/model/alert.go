// Package model defines the core data types shared across the triage pipeline.
package model

import "time"

// RiskCategory is a customer's KYC risk rating.
type RiskCategory string

const (
	RiskLow    RiskCategory = "Low"
	RiskMedium RiskCategory = "Medium"
	RiskHigh   RiskCategory = "High"
)

// Num returns the ordinal encoding used by the feature stage
// (Low=0, Medium=1, High=2). Unknown categories map to -1.
func (r RiskCategory) Num() float64 {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// AlertType categorizes what kind of monitoring rule fired.
type AlertType string

const (
	AlertAML   AlertType = "AML"
	AlertKYC   AlertType = "KYC"
	AlertFraud AlertType = "Fraud"
)

// TxType categorizes a transaction.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxTransfer   TxType = "transfer"
	TxPurchase   TxType = "purchase"
)

// Customer is static reference data created at generation time.
type Customer struct {
	CustomerID   string       `json:"customer_id"`
	Name         string       `json:"name"`
	Country      string       `json:"country"`
	RiskCategory RiskCategory `json:"risk_category"`
	OnboardedAt  time.Time    `json:"onboarded_at"`
}

// Transaction is a single movement of funds for a customer.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	Amount        float64   `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
	TxType        TxType    `json:"tx_type"`
	TxCountry     string    `json:"tx_country"`
}

// Alert is a flagged event awaiting analyst review. TransactionID is empty
// for review alerts not tied to a single transaction (e.g. periodic KYC).
// PriorityFlag is the training label: 1 if the alert was previously worked
// as high priority.
type Alert struct {
	AlertID       string    `json:"alert_id"`
	CustomerID    string    `json:"customer_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AlertType     AlertType `json:"alert_type"`
	CreatedAt     time.Time `json:"created_at"`
	PriorityFlag  int       `json:"priority_flag"`
}

// ScoredAlert pairs an alert with its model-estimated priority score,
// the probability in [0,1] that the alert is a true positive.
type ScoredAlert struct {
	AlertID       string    `json:"alert_id"`
	CustomerID    string    `json:"customer_id"`
	AlertType     AlertType `json:"alert_type"`
	PriorityScore float64   `json:"priority_score"`
}
