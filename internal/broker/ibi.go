package broker

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/models"
)

// IBI is the classifier for IBI securities trading accounts. IBI statements
// use Hebrew type labels and carry two quirks the rest of the pipeline must
// never see: sells and withdrawals report positive quantities, and NIS
// execution prices are quoted in agorot.
type IBI struct{}

var _ Classifier = (*IBI)(nil)

// NewIBI returns the IBI classifier.
func NewIBI() *IBI { return &IBI{} }

func (c *IBI) Name() string { return "ibi" }

// ibiLabels maps every IBI transaction type observed in account exports to a
// standard effect. Order matters: substring resolution tries entries top to
// bottom, so longer tax labels sit above the generic withdrawal label.
var ibiLabels = []labelEffect{
	// Taxes. Listed first so 'משיכת מס מטח' never resolves through 'משיכה'.
	{"משיכת מס חול מטח", models.EffectTax},
	{"משיכת מס מטח", models.EffectTax},
	{"משיכת ריבית מטח", models.EffectTax},

	// Purchases.
	{"קניה שח", models.EffectBuy},
	{"קניה רצף", models.EffectBuy},
	{"קניה חול מטח", models.EffectBuy},
	{"קניה מעוף", models.EffectBuy},

	// Sales. Quantities arrive positive, ShareEffect flips the direction.
	{"מכירה שח", models.EffectSell},
	{"מכירה רצף", models.EffectSell},
	{"מכירה חול מטח", models.EffectSell},
	{"מכירה מעוף", models.EffectSell},

	// Deposits. Foreign dividend deposits are cash, not shares.
	{"הפקדה דיבידנד מטח", models.EffectDividend},
	{"הפקדה פקיעה", models.EffectDeposit},
	{"הפקדה", models.EffectDeposit},

	// Withdrawals.
	{"משיכה פקיעה", models.EffectWithdrawal},
	{"משיכה", models.EffectWithdrawal},

	// Income.
	{"דיבדנד", models.EffectDividend},
	{"ריבית מזומן בשח", models.EffectInterest},

	// Transfers, benefits and fees.
	{"העברה מזומן בשח", models.EffectTransfer},
	{"הטבה", models.EffectBonus},
	{"דמי טפול מזומן בשח", models.EffectFee},
}

// ibiPhantomKeywords flag security names that belong to IBI tax bookkeeping
// rather than real holdings.
var ibiPhantomKeywords = []string{
	"מס לשלם",
	"מס עתידי",
	"מס ששולם",
	"זיכוי מס",
	"מס תקבולים",
	"ריבית חובה",
	"מסח/",
	"מס/",
	"דמי טפול",
	"עמלת",
}

// ibiPhantomSymbols are placeholder symbols IBI uses for fee and tax
// bookkeeping rows.
var ibiPhantomSymbols = map[string]bool{
	"FEE": true,
	"TAX": true,
}

// ibiPhantomLabels are type labels that always create phantom positions.
var ibiPhantomLabels = map[string]bool{
	"משיכת מס חול מטח": true,
	"משיכת מס מטח":     true,
	"משיכת ריבית מטח":  true,
}

func (c *IBI) Classify(tx *models.Transaction) models.Effect {
	return classifyLabel(ibiLabels, strings.TrimSpace(tx.Type))
}

// IsPhantom reports whether the transaction belongs to an IBI internal
// bookkeeping entry: a "999"-prefixed or placeholder symbol, a tax or fee
// keyword in the security name, or a tax-type label.
func (c *IBI) IsPhantom(tx *models.Transaction) bool {
	symbol := strings.TrimSpace(tx.SecuritySymbol)
	if strings.HasPrefix(symbol, "999") || ibiPhantomSymbols[symbol] {
		return true
	}
	name := strings.TrimSpace(tx.SecurityName)
	for _, kw := range ibiPhantomKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return ibiPhantomLabels[strings.TrimSpace(tx.Type)]
}

// ShareEffect normalizes IBI's positive-quantity-on-sell quirk: sell and
// withdrawal rows carry positive quantities, so direction comes from the
// effect and the magnitude is always the absolute quantity.
func (c *IBI) ShareEffect(tx *models.Transaction) (models.ShareDirection, float64) {
	switch c.Classify(tx) {
	case models.EffectBuy, models.EffectDeposit, models.EffectBonus:
		return models.DirectionAdd, abs(tx.Quantity)
	case models.EffectSell, models.EffectWithdrawal:
		return models.DirectionRemove, abs(tx.Quantity)
	default:
		return models.DirectionNone, 0
	}
}

// CostBasis computes the cash cost of an IBI transaction in its own currency.
// Bonus shares are free. Deposits carry no cash amount, so they are valued at
// the execution price at transfer time; NIS execution prices are quoted in
// agorot and divided by 100. Everything else uses the statement amounts:
// local for NIS rows, foreign otherwise.
func (c *IBI) CostBasis(tx *models.Transaction) decimal.Decimal {
	label := strings.TrimSpace(tx.Type)

	if strings.Contains(label, "הטבה") {
		return decimal.Zero
	}

	if strings.Contains(label, "הפקדה") && !strings.Contains(label, "דיבידנד") {
		qty := decimal.NewFromFloat(tx.Quantity)
		price := decimal.NewFromFloat(tx.ExecutionPrice)
		if tx.Currency == models.CurrencyNIS {
			return qty.Mul(price.Div(decimal.NewFromInt(100)))
		}
		return qty.Mul(price)
	}

	if tx.Currency == models.CurrencyNIS {
		return decimal.NewFromFloat(tx.AmountLocal).Abs()
	}
	return decimal.NewFromFloat(tx.AmountForeign).Abs()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
