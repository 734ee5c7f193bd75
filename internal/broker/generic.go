package broker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/models"
)

// Generic classifies statements from brokers that follow the common
// conventions: English type labels and signed quantities, negative on sells
// and withdrawals. It is the fallback when no broker-specific classifier is
// registered.
type Generic struct{}

var _ Classifier = (*Generic)(nil)

// NewGeneric returns the conventional-format classifier.
func NewGeneric() *Generic { return &Generic{} }

func (c *Generic) Name() string { return "generic" }

var genericLabels = []labelEffect{
	{"buy", models.EffectBuy},
	{"purchase", models.EffectBuy},
	{"sell", models.EffectSell},
	{"sale", models.EffectSell},
	{"deposit", models.EffectDeposit},
	{"withdrawal", models.EffectWithdrawal},
	{"dividend", models.EffectDividend},
	{"interest", models.EffectInterest},
	{"tax", models.EffectTax},
	{"fee", models.EffectFee},
	{"commission", models.EffectFee},
	{"transfer", models.EffectTransfer},
	{"bonus", models.EffectBonus},
}

func (c *Generic) Classify(tx *models.Transaction) models.Effect {
	return classifyLabel(genericLabels, strings.ToLower(strings.TrimSpace(tx.Type)))
}

func (c *Generic) IsPhantom(tx *models.Transaction) bool {
	return false
}

// ShareEffect trusts the quantity sign: positive adds, negative removes. The
// effect only decides whether shares move at all.
func (c *Generic) ShareEffect(tx *models.Transaction) (models.ShareDirection, float64) {
	switch c.Classify(tx) {
	case models.EffectBuy, models.EffectSell, models.EffectDeposit,
		models.EffectWithdrawal, models.EffectBonus:
		if tx.Quantity < 0 {
			return models.DirectionRemove, -tx.Quantity
		}
		return models.DirectionAdd, tx.Quantity
	default:
		return models.DirectionNone, 0
	}
}

func (c *Generic) CostBasis(tx *models.Transaction) decimal.Decimal {
	label := strings.ToLower(strings.TrimSpace(tx.Type))
	if strings.Contains(label, "bonus") {
		return decimal.Zero
	}
	if strings.Contains(label, "deposit") && !strings.Contains(label, "dividend") {
		return decimal.NewFromFloat(tx.Quantity).Mul(decimal.NewFromFloat(tx.ExecutionPrice)).Abs()
	}
	if tx.Currency == models.CurrencyNIS {
		return decimal.NewFromFloat(tx.AmountLocal).Abs()
	}
	return decimal.NewFromFloat(tx.AmountForeign).Abs()
}
