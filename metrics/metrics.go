package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics gom các collector của server. Method trên *Metrics nil không làm gì.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	loginAttempts    *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	submissionPoints prometheus.Histogram
	importedUsers    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizsim_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_login_attempts_total",
			Help: "Total number of login attempts",
		}, []string{"status", "method"}), // status: success/failure, method: password/google
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_submissions_total",
			Help: "Total number of recorded submissions",
		}, []string{"round_type", "ledger"}), // ledger: individual/team
		submissionPoints: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizsim_submission_points",
			Help:    "Points awarded per submission",
			Buckets: []float64{-50, -10, 0, 10, 25, 50, 100},
		}),
		importedUsers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bizsim_imported_users_total",
			Help: "Users processed by bulk import",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) LoginAttempt(method string, ok bool) {
	if m == nil {
		return
	}
	status := "failure"
	if ok {
		status = "success"
	}
	m.loginAttempts.WithLabelValues(status, method).Inc()
}

func (m *Metrics) SubmissionRecorded(roundType string, teamLedger bool, points int) {
	if m == nil {
		return
	}
	ledger := "individual"
	if teamLedger {
		ledger = "team"
	}
	m.submissions.WithLabelValues(roundType, ledger).Inc()
	m.submissionPoints.Observe(float64(points))
}

func (m *Metrics) UsersImported(processed, failed int) {
	if m == nil {
		return
	}
	m.importedUsers.WithLabelValues("processed").Add(float64(processed))
	m.importedUsers.WithLabelValues("failed").Add(float64(failed))
}
