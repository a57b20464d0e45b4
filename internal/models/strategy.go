package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DefaultRiskLevel is applied when a strategy does not name its risk level.
const DefaultRiskLevel = "medium"

// StrategyStep is one action of a plan. Steps have no identity of their own;
// their position inside StrategyDraft.Steps is the execution order.
type StrategyStep struct {
	Action      string   `json:"action"`
	Protocol    string   `json:"protocol"`
	Asset       string   `json:"asset"`
	ExpectedApy *float64 `json:"expected_apy"`
	Amount      *string  `json:"amount"`
}

// StrategyDraft holds every client-editable field of a strategy.
// It deliberately has no creator or creation time.
type StrategyDraft struct {
	ID           string     `gorm:"column:id;primarykey;type:text" json:"id"`
	Goal         string     `gorm:"column:goal;type:text;not null" json:"goal"`
	Chains       StringList `gorm:"column:chains;type:jsonb" json:"chains"`
	Protocols    StringList `gorm:"column:protocols;type:jsonb" json:"protocols"`
	Steps        StepList   `gorm:"column:steps;type:jsonb" json:"steps"`
	RiskLevel    string     `gorm:"column:risk_level;type:text;not null;default:'medium'" json:"risk_level"`
	EstimatedApy *float64   `gorm:"column:estimated_apy" json:"estimated_apy"`
	EstimatedTvl *string    `gorm:"column:estimated_tvl;type:text" json:"estimated_tvl"`
	Confidence   *float64   `gorm:"column:confidence" json:"confidence"`
	Reasoning    *string    `gorm:"column:reasoning;type:text" json:"reasoning"`
	Warnings     StringList `gorm:"column:warnings;type:jsonb" json:"warnings"`
}

// StrategyRecord is a stored strategy: a draft plus the write-once owner
// fields. Build one with NewStrategyRecord and change it only with Replace.
type StrategyRecord struct {
	StrategyDraft `gorm:"embedded"`
	Creator       string `gorm:"column:creator;type:text;not null;index" json:"creator"`
	CreatedAt     uint64 `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
}

func (StrategyRecord) TableName() string {
	return "strategy_record"
}

// NewStrategyRecord stamps a draft with its creator and creation time (ms).
func NewStrategyRecord(draft StrategyDraft, creator string, createdAt uint64) StrategyRecord {
	return StrategyRecord{
		StrategyDraft: draft.Clone(),
		Creator:       creator,
		CreatedAt:     createdAt,
	}
}

// Replace returns a record holding draft's content while keeping r's
// creator and creation time.
func (r StrategyRecord) Replace(draft StrategyDraft) StrategyRecord {
	return NewStrategyRecord(draft, r.Creator, r.CreatedAt)
}

// Clone returns a deep copy of r.
func (r StrategyRecord) Clone() StrategyRecord {
	r.StrategyDraft = r.StrategyDraft.Clone()
	return r
}

// Clone returns a deep copy of d so callers never share slices or pointers
// with a stored record.
func (d StrategyDraft) Clone() StrategyDraft {
	out := d
	out.Chains = d.Chains.clone()
	out.Protocols = d.Protocols.clone()
	out.Warnings = d.Warnings.clone()
	out.EstimatedApy = cloneFloat(d.EstimatedApy)
	out.EstimatedTvl = cloneString(d.EstimatedTvl)
	out.Confidence = cloneFloat(d.Confidence)
	out.Reasoning = cloneString(d.Reasoning)
	if d.Steps != nil {
		out.Steps = make(StepList, len(d.Steps))
		for i, step := range d.Steps {
			step.ExpectedApy = cloneFloat(step.ExpectedApy)
			step.Amount = cloneString(step.Amount)
			out.Steps[i] = step
		}
	}
	return out
}

// StringList is an ordered list of strings stored as a jsonb array.
// A nil list is stored as NULL.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil || raw == nil {
		*l = nil
		return err
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

func (l StringList) clone() StringList {
	if l == nil {
		return nil
	}
	return append(StringList{}, l...)
}

// StepList is an ordered list of steps stored as a jsonb array.
type StepList []StrategyStep

// Value implements driver.Valuer
func (l StepList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]StrategyStep(l))
}

// Scan implements sql.Scanner
func (l *StepList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil || raw == nil {
		*l = nil
		return err
	}
	return json.Unmarshal(raw, (*[]StrategyStep)(l))
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb value type %T", value)
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
