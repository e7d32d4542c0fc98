package gen

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Scenario tunes the shape of the synthetic population. Zero values fall
// back to the defaults below, so a scenario file only needs to name the
// knobs it changes.
type Scenario struct {
	// RiskMix is the probability of each customer risk category.
	RiskMix CategoryMix `yaml:"risk_mix"`
	// AlertTypeMix is the probability of each alert type.
	AlertTypeMix AlertMix `yaml:"alert_type_mix"`
	// AmountMeanLog and AmountSigmaLog parameterize the log-normal
	// transaction amount distribution.
	AmountMeanLog  float64 `yaml:"amount_mean_log"`
	AmountSigmaLog float64 `yaml:"amount_sigma_log"`
	// PeriodDays is the window before AnchorDate that transactions and
	// alerts fall into.
	PeriodDays int `yaml:"period_days"`
	// AnchorDate is the fixed upper bound of all generated timestamps,
	// RFC 3339 date. A fixed anchor keeps generation reproducible.
	AnchorDate string `yaml:"anchor_date"`
}

// CategoryMix weights the customer risk categories.
type CategoryMix struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// AlertMix weights the alert types.
type AlertMix struct {
	AML   float64 `yaml:"aml"`
	KYC   float64 `yaml:"kyc"`
	Fraud float64 `yaml:"fraud"`
}

// DefaultScenario returns the baseline population shape.
func DefaultScenario() Scenario {
	return Scenario{
		RiskMix:        CategoryMix{Low: 0.6, Medium: 0.3, High: 0.1},
		AlertTypeMix:   AlertMix{AML: 0.5, KYC: 0.3, Fraud: 0.2},
		AmountMeanLog:  6.0, // median tx around $400
		AmountSigmaLog: 1.2,
		PeriodDays:     365,
		AnchorDate:     "2025-01-01",
	}
}

// LoadScenario reads a scenario from a YAML file and fills unset fields
// with defaults.
func LoadScenario(path string) (Scenario, error) {
	def := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, eris.Wrapf(err, "gen: read scenario %s", path)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, eris.Wrapf(err, "gen: parse scenario %s", path)
	}

	s.applyDefaults(def)
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func (s *Scenario) applyDefaults(def Scenario) {
	if s.RiskMix == (CategoryMix{}) {
		s.RiskMix = def.RiskMix
	}
	if s.AlertTypeMix == (AlertMix{}) {
		s.AlertTypeMix = def.AlertTypeMix
	}
	if s.AmountMeanLog == 0 {
		s.AmountMeanLog = def.AmountMeanLog
	}
	if s.AmountSigmaLog == 0 {
		s.AmountSigmaLog = def.AmountSigmaLog
	}
	if s.PeriodDays == 0 {
		s.PeriodDays = def.PeriodDays
	}
	if s.AnchorDate == "" {
		s.AnchorDate = def.AnchorDate
	}
}

// Validate rejects scenario values the generator cannot honor.
func (s Scenario) Validate() error {
	if s.RiskMix.Low < 0 || s.RiskMix.Medium < 0 || s.RiskMix.High < 0 {
		return eris.New("gen: risk_mix weights must be non-negative")
	}
	if s.RiskMix.Low+s.RiskMix.Medium+s.RiskMix.High <= 0 {
		return eris.New("gen: risk_mix weights must not all be zero")
	}
	if s.AlertTypeMix.AML < 0 || s.AlertTypeMix.KYC < 0 || s.AlertTypeMix.Fraud < 0 {
		return eris.New("gen: alert_type_mix weights must be non-negative")
	}
	if s.AlertTypeMix.AML+s.AlertTypeMix.KYC+s.AlertTypeMix.Fraud <= 0 {
		return eris.New("gen: alert_type_mix weights must not all be zero")
	}
	if s.AmountSigmaLog <= 0 {
		return eris.Errorf("gen: amount_sigma_log must be positive (got %g)", s.AmountSigmaLog)
	}
	if s.PeriodDays <= 0 {
		return eris.Errorf("gen: period_days must be positive (got %d)", s.PeriodDays)
	}
	if _, err := s.anchor(); err != nil {
		return err
	}
	return nil
}

// anchor parses AnchorDate as a UTC midnight timestamp.
func (s Scenario) anchor() (time.Time, error) {
	t, err := time.Parse("2006-01-02", s.AnchorDate)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "gen: parse anchor_date %q", s.AnchorDate)
	}
	return t.UTC(), nil
}
