package service

import (
	"context"
	"math"
	"time"

	"github.com/smokemoha/mortgage-calc-api/internal/domain"
	"github.com/smokemoha/mortgage-calc-api/internal/infra/observability"
	"github.com/smokemoha/mortgage-calc-api/internal/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/calculator")

const (
	monthsInYear   = 12
	percentDivisor = 100
)

// Input bounds, inclusive on both ends. The bound text is what violation
// messages show, so the rate maximum keeps its "50.0" notation.
var (
	minPrincipal = validation.NewBound("1000")
	maxPrincipal = validation.NewBound("10000000")
	minRate      = validation.NewBound("0.01")
	maxRate      = validation.NewBound("50.0")
	minYears     = validation.NewBound("1")
	maxYears     = validation.NewBound("50")
)

// Field display names used in validation error messages.
const (
	fieldPrincipal = "Principal"
	fieldRate      = "Annual Interest Rate"
	fieldYears     = "Years"
)

// Calculator validates quote requests and computes fixed-rate amortization
// summaries. It is stateless: every quote depends only on its own input, so
// identical requests always produce identical results.
type Calculator struct {
	validator *validation.Validator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewCalculator creates the calculator service with all dependencies injected.
func NewCalculator(validator *validation.Validator, metrics *observability.Metrics, logger *zap.Logger) *Calculator {
	return &Calculator{
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Quote validates the three raw fields and, if all pass, computes the payment
// breakdown. Field errors are collected, not short-circuited: the caller sees
// every invalid field in one response, in field order.
func (c *Calculator) Quote(ctx context.Context, req *domain.QuoteRequest) (*domain.PaymentBreakdown, error) {
	_, span := tracer.Start(ctx, "Calculator.Quote")
	defer span.End()

	start := time.Now()
	defer func() {
		c.metrics.RecordRequestDuration("quote", time.Since(start))
	}()

	principal, principalErr := c.validator.Field(req.Principal, fieldPrincipal, minPrincipal, maxPrincipal)
	rate, rateErr := c.validator.Field(req.AnnualRate, fieldRate, minRate, maxRate)
	years, yearsErr := c.validator.Field(req.Years, fieldYears, minYears, maxYears)

	var details []string
	for _, fe := range []struct {
		field string
		err   error
	}{
		{fieldPrincipal, principalErr},
		{fieldRate, rateErr},
		{fieldYears, yearsErr},
	} {
		if fe.err != nil {
			details = append(details, fe.err.Error())
			c.metrics.IncrRejectedInput(fe.field)
		}
	}
	if len(details) > 0 {
		c.metrics.IncrQuote("validation_error")
		return nil, &domain.ErrValidation{Details: details}
	}

	terms := domain.LoanTerms{
		Principal:  principal.InexactFloat64(),
		AnnualRate: rate.InexactFloat64(),
		Years:      years.InexactFloat64(),
	}
	span.SetAttributes(
		attribute.Float64("loan.principal", terms.Principal),
		attribute.Float64("loan.annual_rate", terms.AnnualRate),
	)

	monthly, err := MonthlyPayment(terms.Principal, terms.AnnualRate, terms.Years)
	if err != nil {
		c.metrics.IncrQuote("calculation_error")
		c.logger.Error("calculation error",
			zap.Float64("principal", terms.Principal),
			zap.Float64("annual_rate", terms.AnnualRate),
			zap.Error(err),
		)
		return nil, err
	}

	total := monthly * terms.Years * monthsInYear
	interest := total - terms.Principal

	c.metrics.IncrQuote("success")

	return &domain.PaymentBreakdown{
		Success:        true,
		MonthlyPayment: roundTo2(monthly),
		TotalPayment:   roundTo2(total),
		TotalInterest:  roundTo2(interest),
		Principal:      terms.Principal,
		AnnualRate:     terms.AnnualRate,
		Years:          int(years.IntPart()),
	}, nil
}

// MonthlyPayment computes the level monthly payment of a fixed-rate amortized
// loan: M = P * r(1+r)^n / ((1+r)^n - 1), with r the monthly rate and n the
// number of payments. A zero monthly rate degenerates to straight-line
// division, which avoids a zero denominator in the general formula.
func MonthlyPayment(principal, annualRate, years float64) (float64, error) {
	monthlyRate := annualRate / percentDivisor / monthsInYear
	numPayments := years * monthsInYear

	var payment float64
	if monthlyRate == 0 {
		payment = principal / numPayments
	} else {
		factor := math.Pow(1+monthlyRate, numPayments)
		payment = principal * (monthlyRate * factor) / (factor - 1)
	}

	if math.IsNaN(payment) || math.IsInf(payment, 0) || payment <= 0 {
		return 0, &domain.ErrCalculation{Reason: "payment is not a positive finite number"}
	}
	return payment, nil
}

// roundTo2 rounds a monetary amount to 2 decimal places for presentation.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
