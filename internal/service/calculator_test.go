package service_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/smokemoha/mortgage-calc-api/internal/domain"
	"github.com/smokemoha/mortgage-calc-api/internal/infra/observability"
	"github.com/smokemoha/mortgage-calc-api/internal/service"
	"github.com/smokemoha/mortgage-calc-api/internal/validation"

	"go.uber.org/zap"
)

func newCalculator() *service.Calculator {
	logger := zap.NewNop()
	return service.NewCalculator(validation.New(logger), observability.NewMetrics(), logger)
}

func TestMonthlyPayment_KnownScenario(t *testing.T) {
	// 300000 at 6.5% over 30 years is the classic fixture: ~1896.20/month.
	got, err := service.MonthlyPayment(300000, 6.5, 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(got-1896.20) > 0.015 {
		t.Errorf("expected ~1896.20, got %.4f", got)
	}
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	got, err := service.MonthlyPayment(12000, 0, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 1000 {
		t.Errorf("expected straight-line 1000, got %.4f", got)
	}
}

func TestMonthlyPayment_MinRateBoundary(t *testing.T) {
	// 0.01% per year is the smallest rate the validator admits; the general
	// formula must not divide by zero and should sit just above straight-line.
	got, err := service.MonthlyPayment(1000, 0.01, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	straightLine := 1000.0 / 12
	if got < straightLine {
		t.Errorf("payment %.6f below straight-line %.6f", got, straightLine)
	}
	if got-straightLine > 0.01 {
		t.Errorf("payment %.6f too far above straight-line %.6f", got, straightLine)
	}
}

func TestMonthlyPayment_PositiveFiniteAcrossRange(t *testing.T) {
	principals := []float64{1000, 250000, 10000000}
	rates := []float64{0.01, 5, 50}
	years := []float64{1, 30, 50}

	for _, p := range principals {
		for _, r := range rates {
			for _, y := range years {
				got, err := service.MonthlyPayment(p, r, y)
				if err != nil {
					t.Fatalf("p=%v r=%v y=%v: unexpected error %v", p, r, y, err)
				}
				if got <= 0 || math.IsNaN(got) || math.IsInf(got, 0) {
					t.Errorf("p=%v r=%v y=%v: payment not positive finite: %v", p, r, y, got)
				}
				if got*y*12 < p {
					t.Errorf("p=%v r=%v y=%v: total payment %.2f below principal", p, r, y, got*y*12)
				}
			}
		}
	}
}

func TestQuote_Success(t *testing.T) {
	calc := newCalculator()

	req := &domain.QuoteRequest{
		Principal:  json.RawMessage(`300000`),
		AnnualRate: json.RawMessage(`6.5`),
		Years:      json.RawMessage(`30`),
	}

	got, err := calc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !got.Success {
		t.Error("expected success flag")
	}
	if math.Abs(got.MonthlyPayment-1896.20) > 0.02 {
		t.Errorf("expected monthly ~1896.20, got %.2f", got.MonthlyPayment)
	}
	if math.Abs(got.TotalPayment-got.MonthlyPayment*360) > 1.0 {
		t.Errorf("total %.2f inconsistent with monthly %.2f", got.TotalPayment, got.MonthlyPayment)
	}
	if math.Abs(got.TotalPayment-got.TotalInterest-300000) > 0.001 {
		t.Errorf("interest %.2f inconsistent with total %.2f", got.TotalInterest, got.TotalPayment)
	}
	if got.Principal != 300000 || got.AnnualRate != 6.5 || got.Years != 30 {
		t.Errorf("inputs not echoed: %+v", got)
	}
}

func TestQuote_AcceptsStringValues(t *testing.T) {
	calc := newCalculator()

	req := &domain.QuoteRequest{
		Principal:  json.RawMessage(`"300000"`),
		AnnualRate: json.RawMessage(`"6.5"`),
		Years:      json.RawMessage(`"30"`),
	}

	got, err := calc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(got.MonthlyPayment-1896.20) > 0.02 {
		t.Errorf("expected monthly ~1896.20, got %.2f", got.MonthlyPayment)
	}
}

func TestQuote_CollectsAllErrors(t *testing.T) {
	calc := newCalculator()

	req := &domain.QuoteRequest{
		AnnualRate: json.RawMessage(`"abc"`),
		Years:      json.RawMessage(`51`),
	}

	_, err := calc.Quote(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	validationErr, ok := err.(*domain.ErrValidation)
	if !ok {
		t.Fatalf("expected *domain.ErrValidation, got %T", err)
	}

	want := []string{
		"Principal cannot be empty",
		"Annual Interest Rate must be a valid number",
		"Years must be no more than 50",
	}
	if len(validationErr.Details) != len(want) {
		t.Fatalf("expected %d details, got %d: %v", len(want), len(validationErr.Details), validationErr.Details)
	}
	for i, msg := range want {
		if validationErr.Details[i] != msg {
			t.Errorf("detail %d: expected %q, got %q", i, msg, validationErr.Details[i])
		}
	}
}

func TestQuote_MaliciousInput(t *testing.T) {
	calc := newCalculator()

	req := &domain.QuoteRequest{
		Principal:  json.RawMessage(`"<script>alert(1)</script>"`),
		AnnualRate: json.RawMessage(`6.5`),
		Years:      json.RawMessage(`30`),
	}

	_, err := calc.Quote(context.Background(), req)
	validationErr, ok := err.(*domain.ErrValidation)
	if !ok {
		t.Fatalf("expected *domain.ErrValidation, got %T (%v)", err, err)
	}
	if len(validationErr.Details) != 1 || validationErr.Details[0] != "Invalid characters detected in Principal" {
		t.Errorf("unexpected details: %v", validationErr.Details)
	}
}

func TestQuote_BoundaryPrincipal(t *testing.T) {
	calc := newCalculator()

	req := &domain.QuoteRequest{
		Principal:  json.RawMessage(`1000`),
		AnnualRate: json.RawMessage(`6.5`),
		Years:      json.RawMessage(`30`),
	}
	if _, err := calc.Quote(context.Background(), req); err != nil {
		t.Errorf("expected 1000 principal to pass, got %v", err)
	}

	req.Principal = json.RawMessage(`999`)
	_, err := calc.Quote(context.Background(), req)
	validationErr, ok := err.(*domain.ErrValidation)
	if !ok {
		t.Fatalf("expected *domain.ErrValidation, got %T", err)
	}
	if validationErr.Details[0] != "Principal must be at least 1000" {
		t.Errorf("unexpected detail: %q", validationErr.Details[0])
	}
}
