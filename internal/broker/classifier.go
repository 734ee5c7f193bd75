// Package broker provides per-broker transaction classification. Each broker
// exports its statements with its own label vocabulary and sign conventions;
// a Classifier normalizes those into the effects the portfolio builder
// understands.
package broker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/models"
)

// Classifier normalizes broker-specific transaction records.
type Classifier interface {
	// Name returns the broker identifier this classifier handles.
	Name() string

	// Classify maps the transaction's type label to a standard effect.
	// Unrecognized labels map to EffectOther.
	Classify(tx *models.Transaction) models.Effect

	// IsPhantom reports whether the transaction belongs to a broker
	// internal tracking entry rather than a real holding.
	IsPhantom(tx *models.Transaction) bool

	// ShareEffect returns the position direction and the share magnitude,
	// normalizing broker sign quirks. Magnitude is always non-negative.
	ShareEffect(tx *models.Transaction) (models.ShareDirection, float64)

	// CostBasis returns the cash cost of the transaction in its own
	// currency. Free shares cost zero.
	CostBasis(tx *models.Transaction) decimal.Decimal
}

// Classify runs the full classification pipeline for a single transaction.
func Classify(c Classifier, tx *models.Transaction) models.Classification {
	effect := c.Classify(tx)
	direction, magnitude := c.ShareEffect(tx)
	return models.Classification{
		Effect:    effect,
		Phantom:   c.IsPhantom(tx),
		Direction: direction,
		Magnitude: magnitude,
		CostBasis: c.CostBasis(tx),
	}
}

// labelEffect pairs a broker label with its standard effect. Slices of these
// preserve registration order so substring matching stays deterministic.
type labelEffect struct {
	label  string
	effect models.Effect
}

// classifyLabel resolves a type label against an ordered mapping: exact match
// first, then first substring match in mapping order.
func classifyLabel(mapping []labelEffect, label string) models.Effect {
	for _, m := range mapping {
		if m.label == label {
			return m.effect
		}
	}
	for _, m := range mapping {
		if m.label != "" && strings.Contains(label, m.label) {
			return m.effect
		}
	}
	return models.EffectOther
}
