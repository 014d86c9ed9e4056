package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	exercisesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exercises_generated_total",
			Help: "Exercises generated, by kind",
		},
		[]string{"kind"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exercise_submissions_total",
			Help: "Graded exercise submissions, by kind and correctness",
		},
		[]string{"kind", "correct"},
	)

	xpAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Experience points granted across all users",
		},
	)

	checkInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_checkins_total",
			Help: "Daily check-ins, by whether a streak milestone was reached",
		},
		[]string{"milestone"},
	)

	evaluatorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluator_calls_total",
			Help: "Free-text evaluation calls, by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	evaluatorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evaluator_duration_seconds",
			Help:    "Free-text evaluation latency in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	staleExercisesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_exercises_swept_total",
			Help: "Unsubmitted exercises removed by the sweeper",
		},
	)

	importedWordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabulary_import_rows_total",
			Help: "Spreadsheet rows processed by imports, by outcome",
		},
		[]string{"outcome"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordGenerated(kind string) {
	exercisesGeneratedTotal.WithLabelValues(kind).Inc()
}

func RecordSubmission(kind string, correct bool, xp int) {
	submissionsTotal.WithLabelValues(kind, strconv.FormatBool(correct)).Inc()
	if xp > 0 {
		xpAwardedTotal.Add(float64(xp))
	}
}

func RecordCheckIn(milestone bool, xp int) {
	checkInsTotal.WithLabelValues(strconv.FormatBool(milestone)).Inc()
	if xp > 0 {
		xpAwardedTotal.Add(float64(xp))
	}
}

func RecordEvaluation(provider string, success bool, d time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	evaluatorCallsTotal.WithLabelValues(provider, status).Inc()
	evaluatorDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func RecordSwept(n int64) {
	if n > 0 {
		staleExercisesSwept.Add(float64(n))
	}
}

func RecordImportRows(created, skipped, failed int) {
	importedWordsTotal.WithLabelValues("created").Add(float64(created))
	importedWordsTotal.WithLabelValues("skipped").Add(float64(skipped))
	importedWordsTotal.WithLabelValues("failed").Add(float64(failed))
}
