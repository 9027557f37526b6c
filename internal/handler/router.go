package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/smokemoha/mortgage-calc-api/internal/domain"
	"github.com/smokemoha/mortgage-calc-api/internal/infra/observability"
	"github.com/smokemoha/mortgage-calc-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil limiter disables rate limiting (used by tests).
func NewRouter(calc *service.Calculator, limiter *RateLimiter, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/health", healthHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/v1/metrics/calculator", calculatorMetricsHandler(metrics))

	// --- API ---
	calculate := calculateHandler(calc, logger)
	if limiter != nil {
		r.With(RateLimitMiddleware(limiter, metrics)).Post("/calculate", calculate)
	} else {
		r.Post("/calculate", calculate)
	}

	return r
}

// calculateHandler serves POST /calculate. The request body carries the three
// raw loan fields; everything past JSON decoding is delegated to the
// calculator service.
func calculateHandler(calc *service.Calculator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /calculate")
		defer span.End()

		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
			writeError(w, http.StatusBadRequest, "Content-Type must be application/json")
			return
		}

		var req domain.QuoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Empty() {
			writeError(w, http.StatusBadRequest, "Request body cannot be empty")
			return
		}

		breakdown, err := calc.Quote(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// No input values in the success log.
		logger.Info("mortgage calculation completed",
			zap.String("request_id", middleware.GetReqID(ctx)),
		)
		writeJSON(w, http.StatusOK, breakdown)
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:  "healthy",
			Service: "mortgage-calculator",
		})
	}
}

func calculatorMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetCalculatorSnapshot())
	}
}
