package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"strategystore/internal/models"

	"github.com/shopspring/decimal"
)

type stepDocument struct {
	Action      *string  `json:"action"`
	Protocol    *string  `json:"protocol"`
	Asset       *string  `json:"asset"`
	ExpectedApy *float64 `json:"expected_apy"`
	Amount      *string  `json:"amount"`
}

// strategyDocument mirrors the wire shape. Pointers tell an absent key apart
// from a zero value. creator and created_at are known keys whose values are
// dropped: the catalog owns them.
type strategyDocument struct {
	ID           *string         `json:"id"`
	Goal         *string         `json:"goal"`
	Chains       *[]string       `json:"chains"`
	Protocols    *[]string       `json:"protocols"`
	Steps        *[]stepDocument `json:"steps"`
	RiskLevel    *string         `json:"risk_level"`
	EstimatedApy *float64        `json:"estimated_apy"`
	EstimatedTvl *string         `json:"estimated_tvl"`
	Confidence   *float64        `json:"confidence"`
	Reasoning    *string         `json:"reasoning"`
	Warnings     *[]string       `json:"warnings"`
	Creator      json.RawMessage `json:"creator"`
	CreatedAt    json.RawMessage `json:"created_at"`
}

// DecodeDraft parses a JSON strategy payload. Unknown keys, bad types,
// trailing data and non-decimal amounts fail with KindMalformedInput; absent
// required keys fail with KindMissingField. risk_level is the only key that
// gets a default.
func DecodeDraft(payload []byte) (models.StrategyDraft, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var doc strategyDocument
	if err := dec.Decode(&doc); err != nil {
		return models.StrategyDraft{}, malformed(payload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return models.StrategyDraft{}, malformed(payload, errors.New("unexpected data after strategy object"))
	}

	switch {
	case doc.ID == nil || *doc.ID == "":
		return models.StrategyDraft{}, missingField("id")
	case doc.Goal == nil:
		return models.StrategyDraft{}, missingField("goal")
	case doc.Chains == nil:
		return models.StrategyDraft{}, missingField("chains")
	case doc.Protocols == nil:
		return models.StrategyDraft{}, missingField("protocols")
	case doc.Steps == nil:
		return models.StrategyDraft{}, missingField("steps")
	}

	draft := models.StrategyDraft{
		ID:           *doc.ID,
		Goal:         *doc.Goal,
		Chains:       models.StringList(*doc.Chains),
		Protocols:    models.StringList(*doc.Protocols),
		Steps:        make(models.StepList, 0, len(*doc.Steps)),
		RiskLevel:    models.DefaultRiskLevel,
		EstimatedApy: doc.EstimatedApy,
		EstimatedTvl: doc.EstimatedTvl,
		Confidence:   doc.Confidence,
		Reasoning:    doc.Reasoning,
	}
	if doc.RiskLevel != nil {
		draft.RiskLevel = *doc.RiskLevel
	}
	if doc.Warnings != nil {
		draft.Warnings = models.StringList(*doc.Warnings)
	}
	if err := checkDecimal("estimated_tvl", draft.EstimatedTvl); err != nil {
		return models.StrategyDraft{}, malformed(payload, err)
	}

	for i, s := range *doc.Steps {
		switch {
		case s.Action == nil:
			return models.StrategyDraft{}, missingField(fmt.Sprintf("steps[%d].action", i))
		case s.Protocol == nil:
			return models.StrategyDraft{}, missingField(fmt.Sprintf("steps[%d].protocol", i))
		case s.Asset == nil:
			return models.StrategyDraft{}, missingField(fmt.Sprintf("steps[%d].asset", i))
		}
		if err := checkDecimal(fmt.Sprintf("steps[%d].amount", i), s.Amount); err != nil {
			return models.StrategyDraft{}, malformed(payload, err)
		}
		draft.Steps = append(draft.Steps, models.StrategyStep{
			Action:      *s.Action,
			Protocol:    *s.Protocol,
			Asset:       *s.Asset,
			ExpectedApy: s.ExpectedApy,
			Amount:      s.Amount,
		})
	}

	return draft, nil
}

func checkDecimal(field string, v *string) error {
	if v == nil {
		return nil
	}
	if _, err := decimal.NewFromString(*v); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}
