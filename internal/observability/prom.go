package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recipebox"

// Prom holds every collector the API exports. Methods on a nil *Prom are
// no-ops so that repos and handlers can run without metrics in tests.
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	TokensIssued     *prometheus.CounterVec
	AuthRejected     *prometheus.CounterVec
	ResourcesCreated *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		RequestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency. bcrypt on /api/user/token dominates the upper buckets.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}, []string{"method", "route"}),

		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Store operation latency by logical op (users.create, recipes.list, ...).",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op", "status"}),
		DbErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Store failures by logical op and error class.",
		}, []string{"op", "class"}),

		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Token issuance attempts by result (issued, rejected, error).",
		}, []string{"result"}),
		AuthRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejected_requests_total",
			Help:      "Requests turned away by the auth gate, by reason.",
		}, []string{"reason"}),
		ResourcesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "Tags, ingredients and recipes created.",
		}, []string{"resource"}),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.TokensIssued, p.AuthRejected, p.ResourcesCreated,
	)

	return p
}

// HTTPMetrics records count, latency and concurrency per route template.
// Scrapes of /metrics are not counted.
func (p *Prom) HTTPMetrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()
		switch route {
		case "/metrics":
			ctx.Next()
			return
		case "":
			// unmatched paths would otherwise explode label cardinality
			route = "unmatched"
		}

		start := time.Now()
		method := ctx.Request.Method

		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()
		defer inFlight.Dec()

		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveToken records the outcome of one token issuance attempt.
func (p *Prom) ObserveToken(result string) {
	if p == nil {
		return
	}
	p.TokensIssued.WithLabelValues(result).Inc()
}

func (p *Prom) ObserveAuthRejected(reason string) {
	if p == nil {
		return
	}
	p.AuthRejected.WithLabelValues(reason).Inc()
}

func (p *Prom) ObserveCreated(resource string) {
	if p == nil {
		return
	}
	p.ResourcesCreated.WithLabelValues(resource).Inc()
}
