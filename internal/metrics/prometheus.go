package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// gauges lists the keys that move in both directions.
var gauges = map[MetricKey]bool{
	EntriesLive: true,
}

// Collector exports the registry counters in Prometheus format.
//
// Keys are created lazily by the registry, so Describe sends nothing and the
// collector is registered as unchecked.
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector wraps reg. An empty namespace leaves metric names untouched.
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{registry: reg, namespace: namespace}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, val := range c.registry.Snapshot() {
		valueType := prometheus.CounterValue
		if gauges[MetricKey(key)] {
			valueType = prometheus.GaugeValue
		}

		desc := prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "", key),
			"shared clipboard metric "+key,
			nil, nil,
		)
		ch <- prometheus.MustNewConstMetric(desc, valueType, float64(val))
	}
}

// NewPrometheusRegistry builds a dedicated Prometheus registry holding the
// runtime collectors and the clipboard registry.
func NewPrometheusRegistry(reg *Registry, namespace string) (*prometheus.Registry, error) {
	promReg := prometheus.NewRegistry()

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewCollector(reg, namespace),
	} {
		if err := promReg.Register(c); err != nil {
			return nil, err
		}
	}
	return promReg, nil
}

// Handler serves the Prometheus text exposition for promReg.
func Handler(promReg *prometheus.Registry) http.Handler {
	if promReg == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
}
