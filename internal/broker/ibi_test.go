package broker

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/asafgelber/folio/internal/models"
)

func TestIBIClassify(t *testing.T) {
	c := NewIBI()

	tests := []struct {
		label string
		want  models.Effect
	}{
		{"קניה שח", models.EffectBuy},
		{"קניה רצף", models.EffectBuy},
		{"קניה חול מטח", models.EffectBuy},
		{"קניה מעוף", models.EffectBuy},
		{"מכירה שח", models.EffectSell},
		{"מכירה רצף", models.EffectSell},
		{"מכירה חול מטח", models.EffectSell},
		{"מכירה מעוף", models.EffectSell},
		{"הפקדה", models.EffectDeposit},
		{"הפקדה פקיעה", models.EffectDeposit},
		{"הפקדה דיבידנד מטח", models.EffectDividend},
		{"משיכה", models.EffectWithdrawal},
		{"משיכה פקיעה", models.EffectWithdrawal},
		{"דיבדנד", models.EffectDividend},
		{"ריבית מזומן בשח", models.EffectInterest},
		{"משיכת מס חול מטח", models.EffectTax},
		{"משיכת מס מטח", models.EffectTax},
		{"משיכת ריבית מטח", models.EffectTax},
		{"העברה מזומן בשח", models.EffectTransfer},
		{"הטבה", models.EffectBonus},
		{"דמי טפול מזומן בשח", models.EffectFee},
		{"something unknown", models.EffectOther},
		{"", models.EffectOther},
	}

	for _, tt := range tests {
		tx := &models.Transaction{Type: tt.label}
		if got := c.Classify(tx); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestIBIClassifyTrimsWhitespace(t *testing.T) {
	c := NewIBI()
	tx := &models.Transaction{Type: "  קניה שח  "}
	if got := c.Classify(tx); got != models.EffectBuy {
		t.Errorf("Classify with padding = %s, want buy", got)
	}
}

func TestIBIClassifySubstringFallback(t *testing.T) {
	c := NewIBI()

	// Labels with annotations still resolve through substring matching, and
	// tax labels must win over the shorter purchase/withdrawal labels.
	tests := []struct {
		label string
		want  models.Effect
	}{
		{"קניה שח - הוראה 123", models.EffectBuy},
		{"משיכת מס חול מטח Q1", models.EffectTax},
	}
	for _, tt := range tests {
		tx := &models.Transaction{Type: tt.label}
		if got := c.Classify(tx); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.label, got, tt.want)
		}
	}
}

func TestIBIIsPhantom(t *testing.T) {
	c := NewIBI()

	tests := []struct {
		name string
		tx   models.Transaction
		want bool
	}{
		{
			name: "symbol with 999 prefix",
			tx:   models.Transaction{SecuritySymbol: "99912345", SecurityName: "AAPL", Type: "משיכה"},
			want: true,
		},
		{
			name: "future tax name",
			tx:   models.Transaction{SecuritySymbol: "123", SecurityName: "מס עתידי", Type: "משיכה"},
			want: true,
		},
		{
			name: "tax prefix in name",
			tx:   models.Transaction{SecuritySymbol: "123", SecurityName: "מס/ GOGL US", Type: "משיכה"},
			want: true,
		},
		{
			name: "tax paid keyword inside longer name",
			tx:   models.Transaction{SecuritySymbol: "123", SecurityName: "מס ששולם 2024", Type: "הפקדה"},
			want: true,
		},
		{
			name: "fee placeholder symbol",
			tx:   models.Transaction{SecuritySymbol: "FEE", SecurityName: "דמי ניהול", Type: "משיכה"},
			want: true,
		},
		{
			name: "commission keyword in name",
			tx:   models.Transaction{SecuritySymbol: "123", SecurityName: "עמלת קניה", Type: "משיכה"},
			want: true,
		},
		{
			name: "tax type label always phantom",
			tx:   models.Transaction{SecuritySymbol: "AAPL", SecurityName: "Apple Inc", Type: "משיכת מס מטח"},
			want: true,
		},
		{
			name: "real buy",
			tx:   models.Transaction{SecuritySymbol: "AAPL", SecurityName: "Apple Inc", Type: "קניה חול מטח"},
			want: false,
		},
		{
			name: "real withdrawal",
			tx:   models.Transaction{SecuritySymbol: "695437", SecurityName: "מזטפ", Type: "משיכה"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsPhantom(&tt.tx); got != tt.want {
				t.Errorf("IsPhantom() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIBIShareEffect(t *testing.T) {
	c := NewIBI()

	tests := []struct {
		name    string
		tx      models.Transaction
		wantDir models.ShareDirection
		wantQty float64
	}{
		{
			name:    "buy adds",
			tx:      models.Transaction{Type: "קניה שח", Quantity: 10},
			wantDir: models.DirectionAdd,
			wantQty: 10,
		},
		{
			name:    "sell with positive quantity removes",
			tx:      models.Transaction{Type: "מכירה שח", Quantity: 10.5},
			wantDir: models.DirectionRemove,
			wantQty: 10.5,
		},
		{
			name:    "withdrawal with positive quantity removes",
			tx:      models.Transaction{Type: "משיכה", Quantity: 217},
			wantDir: models.DirectionRemove,
			wantQty: 217,
		},
		{
			name:    "deposit adds",
			tx:      models.Transaction{Type: "הפקדה", Quantity: 50},
			wantDir: models.DirectionAdd,
			wantQty: 50,
		},
		{
			name:    "bonus adds",
			tx:      models.Transaction{Type: "הטבה", Quantity: 3},
			wantDir: models.DirectionAdd,
			wantQty: 3,
		},
		{
			name:    "dividend has no share impact",
			tx:      models.Transaction{Type: "דיבדנד", Quantity: 12},
			wantDir: models.DirectionNone,
			wantQty: 0,
		},
		{
			name:    "tax has no share impact",
			tx:      models.Transaction{Type: "משיכת מס מטח", Quantity: 5},
			wantDir: models.DirectionNone,
			wantQty: 0,
		},
		{
			name:    "negative quantity still yields positive magnitude",
			tx:      models.Transaction{Type: "מכירה מעוף", Quantity: -2.5},
			wantDir: models.DirectionRemove,
			wantQty: 2.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, qty := c.ShareEffect(&tt.tx)
			if dir != tt.wantDir || qty != tt.wantQty {
				t.Errorf("ShareEffect() = (%s, %v), want (%s, %v)", dir, qty, tt.wantDir, tt.wantQty)
			}
		})
	}
}

func TestIBICostBasis(t *testing.T) {
	c := NewIBI()

	tests := []struct {
		name string
		tx   models.Transaction
		want decimal.Decimal
	}{
		{
			name: "bonus is free",
			tx:   models.Transaction{Type: "הטבה", Quantity: 5, ExecutionPrice: 100, Currency: models.CurrencyNIS},
			want: decimal.Zero,
		},
		{
			name: "nis deposit converts agorot to shekels",
			tx:   models.Transaction{Type: "הפקדה", Quantity: 10, ExecutionPrice: 1500, Currency: models.CurrencyNIS},
			want: decimal.NewFromInt(150),
		},
		{
			name: "usd deposit uses price as is",
			tx:   models.Transaction{Type: "הפקדה", Quantity: 10, ExecutionPrice: 25, Currency: models.CurrencyUSD},
			want: decimal.NewFromInt(250),
		},
		{
			name: "dividend deposit uses foreign amount not price",
			tx:   models.Transaction{Type: "הפקדה דיבידנד מטח", Quantity: 0, ExecutionPrice: 25, Currency: models.CurrencyUSD, AmountForeign: -42.5},
			want: decimal.NewFromFloat(42.5),
		},
		{
			name: "nis buy uses local amount",
			tx:   models.Transaction{Type: "קניה שח", Quantity: 10, Currency: models.CurrencyNIS, AmountLocal: -1234.56, AmountForeign: 0},
			want: decimal.NewFromFloat(1234.56),
		},
		{
			name: "foreign buy uses foreign amount",
			tx:   models.Transaction{Type: "קניה חול מטח", Quantity: 10, Currency: models.CurrencyUSD, AmountLocal: 0, AmountForeign: -500},
			want: decimal.NewFromInt(500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CostBasis(&tt.tx)
			if !got.Equal(tt.want) {
				t.Errorf("CostBasis() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIBIClassifyFull(t *testing.T) {
	c := NewIBI()
	tx := &models.Transaction{
		Type:           "מכירה שח",
		SecuritySymbol: "695437",
		SecurityName:   "מזטפ",
		Quantity:       20,
		Currency:       models.CurrencyNIS,
		AmountLocal:    3000,
	}

	cl := Classify(c, tx)
	if cl.Effect != models.EffectSell {
		t.Errorf("Effect = %s, want sell", cl.Effect)
	}
	if cl.Phantom {
		t.Error("Phantom = true for real sale")
	}
	if cl.Direction != models.DirectionRemove || cl.Magnitude != 20 {
		t.Errorf("share effect = (%s, %v), want (remove, 20)", cl.Direction, cl.Magnitude)
	}
	if !cl.CostBasis.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("CostBasis = %s, want 3000", cl.CostBasis)
	}
}
