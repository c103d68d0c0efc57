package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricName represent metric name
type MetricName string

func (mn MetricName) String() string {
	return string(mn)
}

const (
	invocationsTotalMetricName    MetricName = "funct_gateway_invocations_total"
	invocationDurationMetricName  MetricName = "funct_gateway_invocation_duration_seconds"
	schemaCacheRequestsMetricName MetricName = "funct_gateway_schema_cache_requests_total"
	httpRequestsTotalMetricName   MetricName = "funct_gateway_http_requests_total"
	batchItemsTotalMetricName     MetricName = "funct_gateway_batch_items_total"
)

// Invocation outcomes.
const (
	OutcomeData           = "data"
	OutcomeErrors         = "errors"
	OutcomeMessage        = "message"
	OutcomeUnknown        = "unknown"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// Set map to check metric name availability.
type Set map[MetricName]struct{}

// Has function check and return bool for metric availability.
func (ms Set) Has(mn MetricName) bool {
	_, exists := ms[mn]
	return exists
}

// Add function add metric name.
func (ms Set) Add(mn MetricName) {
	ms[mn] = struct{}{}
}

var (
	invocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: invocationsTotalMetricName.String(),
		Help: "Number of remote function invocations by outcome",
	}, []string{"function", "outcome"},
	)

	invocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    invocationDurationMetricName.String(),
		Help:    "Duration of remote function invocations",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"function"},
	)

	schemaCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: schemaCacheRequestsMetricName.String(),
		Help: "Schema cache lookups by result",
	}, []string{"result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: httpRequestsTotalMetricName.String(),
		Help: "Number of proxy HTTP requests",
	}, []string{"route", "status"},
	)

	batchItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: batchItemsTotalMetricName.String(),
		Help: "Number of batch items processed by result",
	}, []string{"result"},
	)
)

// BuildAllMetricsSet helps to build all metric and return as Set.
func BuildAllMetricsSet() Set {
	allMetricsSet := Set{}
	allMetricsSet.Add(invocationsTotalMetricName)
	allMetricsSet.Add(invocationDurationMetricName)
	allMetricsSet.Add(schemaCacheRequestsMetricName)
	allMetricsSet.Add(httpRequestsTotalMetricName)
	allMetricsSet.Add(batchItemsTotalMetricName)
	return allMetricsSet
}

// BuildDeniedMetricsSet returns Set and error.
func BuildDeniedMetricsSet(metricsDenylist []string) (Set, error) {
	deniedMetricsSet := Set{}
	allMetricsSet := BuildAllMetricsSet()
	for _, metric := range metricsDenylist {
		if !allMetricsSet.Has(MetricName(metric)) {
			return nil, fmt.Errorf("metric %s doesn't exists", metric)
		}
		deniedMetricsSet.Add(MetricName(metric))
	}
	return deniedMetricsSet, nil
}

// MustRegisterMetrics register the metrics.
func MustRegisterMetrics(reg prometheus.Registerer, deniedMetrics Set) {
	if !deniedMetrics.Has(invocationsTotalMetricName) {
		reg.MustRegister(invocationsTotal)
	}
	if !deniedMetrics.Has(invocationDurationMetricName) {
		reg.MustRegister(invocationDuration)
	}
	if !deniedMetrics.Has(schemaCacheRequestsMetricName) {
		reg.MustRegister(schemaCacheRequests)
	}
	if !deniedMetrics.Has(httpRequestsTotalMetricName) {
		reg.MustRegister(httpRequestsTotal)
	}
	if !deniedMetrics.Has(batchItemsTotalMetricName) {
		reg.MustRegister(batchItemsTotal)
	}
}

// ObserveInvocation records one remote invocation.
func ObserveInvocation(function, outcome string, elapsed time.Duration) {
	invocationsTotal.WithLabelValues(function, outcome).Inc()
	invocationDuration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// ObserveSchemaCache records a schema cache lookup.
func ObserveSchemaCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	schemaCacheRequests.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records a served proxy request.
func ObserveHTTPRequest(route string, status int) {
	httpRequestsTotal.WithLabelValues(route, fmt.Sprint(status)).Inc()
}

// ObserveBatchItem records a processed batch item.
func ObserveBatchItem(ok bool) {
	result := "failed"
	if ok {
		result = "succeeded"
	}
	batchItemsTotal.WithLabelValues(result).Inc()
}
