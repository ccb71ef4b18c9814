package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civictrack-be/models"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	requestDuration   *prometheus.HistogramVec
	issuesCreated     *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	flagsFiled        *prometheus.CounterVec
	issuesDeleted     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "civictrack",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		issuesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civictrack",
			Name:      "issues_created_total",
			Help:      "Issues reported, by category.",
		}, []string{"category"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civictrack",
			Name:      "status_transitions_total",
			Help:      "Issue status changes.",
		}, []string{"from", "to"}),
		flagsFiled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civictrack",
			Name:      "flags_filed_total",
			Help:      "Flags filed, by reason.",
		}, []string{"reason"}),
		issuesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "civictrack",
			Name:      "issues_deleted_total",
			Help:      "Issues deleted with their dependents.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.issuesCreated,
		m.statusTransitions,
		m.flagsFiled,
		m.issuesDeleted,
	)
	return m
}

func (m *Metrics) IssueCreated(category models.Category) {
	if m == nil {
		return
	}
	m.issuesCreated.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) StatusChanged(from, to models.Status) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) FlagFiled(reason models.FlagReason) {
	if m == nil {
		return
	}
	m.flagsFiled.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) IssueDeleted() {
	if m == nil {
		return
	}
	m.issuesDeleted.Inc()
}

// Middleware observes request latency labelled by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return gin.WrapH(promhttp.Handler())
	}
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
