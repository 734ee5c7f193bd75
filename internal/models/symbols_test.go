package models

import "testing"

func TestIsTASENumericID(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"695437", true},
		{"1176593", true},
		{"12345", true},
		{"12345678", true},
		{"1234", false},
		{"123456789", false},
		{"AAPL", false},
		{"69543a", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsTASENumericID(tt.symbol); got != tt.want {
			t.Errorf("IsTASENumericID(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestIsHebrewName(t *testing.T) {
	if !IsHebrewName("מזטפ") {
		t.Error("IsHebrewName(מזטפ) = false")
	}
	if !IsHebrewName("ABC מס") {
		t.Error("mixed string with Hebrew not detected")
	}
	if IsHebrewName("AAPL") {
		t.Error("IsHebrewName(AAPL) = true")
	}
}

func TestYahooSymbol(t *testing.T) {
	tests := []struct {
		symbol   string
		currency string
		want     string
		wantOK   bool
	}{
		{"AAPL", CurrencyUSD, "AAPL", true},
		{"VOD.L", CurrencyGBP, "VOD.L", true},
		{"695437", CurrencyNIS, "695437.TA", true},
		{"695437.TA", CurrencyNIS, "695437.TA", true},
		{"מזטפ", CurrencyNIS, "695437.TA", true},
		{"מטרקס", CurrencyNIS, "445015.TA", true},
		{"נקסנ", CurrencyNIS, "1176593.TA", true},
		{"לאידוע", CurrencyNIS, "לאידוע.TA", false},
		{"TEVA", CurrencyNIS, "TEVA.TA", true},
	}
	for _, tt := range tests {
		got, ok := YahooSymbol(tt.symbol, tt.currency)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("YahooSymbol(%q, %q) = (%q, %v), want (%q, %v)",
				tt.symbol, tt.currency, got, ok, tt.want, tt.wantOK)
		}
	}
}
