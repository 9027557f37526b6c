// Package domain holds the core types of the mortgage calculator API.
package domain

import "encoding/json"

// QuoteRequest is the raw POST /calculate payload. The three field values are
// kept as raw JSON so callers may send either strings or numbers; numeric
// literals keep their exact decimal text for the validator, which parses them
// without going through a binary float.
type QuoteRequest struct {
	Principal  json.RawMessage `json:"principal"`
	AnnualRate json.RawMessage `json:"annualRate"`
	Years      json.RawMessage `json:"years"`
}

// Empty reports whether none of the three fields were supplied.
func (r *QuoteRequest) Empty() bool {
	return len(r.Principal) == 0 && len(r.AnnualRate) == 0 && len(r.Years) == 0
}

// LoanTerms are the three inputs of a quote after validation.
// Invariants: Principal in [1000, 10000000], AnnualRate in [0.01, 50.0]
// (percent per year), Years in [1, 50].
type LoanTerms struct {
	Principal  float64
	AnnualRate float64
	Years      float64
}

// PaymentBreakdown is the successful /calculate response: the amortization
// summary plus the validated inputs echoed back. Monetary fields are rounded
// to 2 decimal places.
type PaymentBreakdown struct {
	Success        bool    `json:"success"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"annualRate"`
	Years          int     `json:"years"`
}

// HealthStatus is the static GET /health response.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CalculatorMetrics is the JSON snapshot served by GET /v1/metrics/calculator.
type CalculatorMetrics struct {
	TotalQuotes    int64   `json:"total_quotes"`
	ErrorRate      float64 `json:"error_rate"`
	RejectedInputs int64   `json:"rejected_inputs"`
	RateLimited    int64   `json:"rate_limited"`
	Period         string  `json:"period"`
}
