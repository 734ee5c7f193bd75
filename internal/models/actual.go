package models

// ActualPosition is a holding as reported by the broker's current portfolio
// statement. It is the reference the calculated portfolio is validated
// against.
type ActualPosition struct {
	SecurityName   string  `json:"security_name"`
	SecuritySymbol string  `json:"security_symbol"`
	Quantity       float64 `json:"quantity"`
	CostBasis      float64 `json:"cost_basis"`
	Currency       string  `json:"currency"`
}
