package metric

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type (
	DurationStat struct {
		Count int64
		Total time.Duration
	}

	// Snapshot is keyed by series name, e.g. `session_logins_total{result="ok"}`.
	Snapshot struct {
		Counters  map[string]int64
		Durations map[string]DurationStat
	}
)

// Registry records samples into a prometheus registry.
// Label names of a metric are fixed by its first sample, samples with other label names are dropped.
type Registry struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewRegistry() *Registry {
	return &Registry{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (r *Registry) With(labels Labels) Metrics {
	return labeled{registry: r, labels: labels}
}

func (r *Registry) Increment(key string) {
	r.increment(key, nil)
}

func (r *Registry) Duration(key string, duration time.Duration) {
	r.observe(key, nil, duration)
}

// Gather exposes the collected families in the prometheus exposition model.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

func (r *Registry) Snapshot() Snapshot {
	snapshot := Snapshot{
		Counters:  make(map[string]int64),
		Durations: make(map[string]DurationStat),
	}

	// families gathered before an error are still consistent
	families, _ := r.Gather()
	for _, family := range families {
		for _, m := range family.GetMetric() {
			name := seriesName(family.GetName(), labelsOf(m))
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				snapshot.Counters[name] = int64(m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				histogram := m.GetHistogram()
				snapshot.Durations[name] = DurationStat{
					Count: int64(histogram.GetSampleCount()),
					Total: time.Duration(histogram.GetSampleSum() * float64(time.Second)),
				}
			}
		}
	}
	return snapshot
}

func (r *Registry) increment(key string, labels Labels) {
	vec := r.counterVec(key, labels)
	if vec == nil {
		return
	}

	counter, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}
	counter.Inc()
}

func (r *Registry) observe(key string, labels Labels, duration time.Duration) {
	vec := r.histogramVec(key, labels)
	if vec == nil {
		return
	}

	observer, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return
	}
	observer.Observe(duration.Seconds())
}

func (r *Registry) counterVec(key string, labels Labels) *prometheus.CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vec, ok := r.counters[key]; ok {
		return vec
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: key, Help: key}, labelNames(labels))
	if err := r.registry.Register(vec); err != nil {
		vec = nil
	}
	r.counters[key] = vec
	return vec
}

func (r *Registry) histogramVec(key string, labels Labels) *prometheus.HistogramVec {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vec, ok := r.histograms[key]; ok {
		return vec
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    key,
		Help:    key,
		Buckets: prometheus.DefBuckets,
	}, labelNames(labels))
	if err := r.registry.Register(vec); err != nil {
		vec = nil
	}
	r.histograms[key] = vec
	return vec
}

type labeled struct {
	registry *Registry
	labels   Labels
}

func (l labeled) With(labels Labels) Metrics {
	merged := maps.Clone(l.labels)
	if merged == nil {
		merged = make(Labels, len(labels))
	}
	maps.Copy(merged, labels)
	return labeled{registry: l.registry, labels: merged}
}

func (l labeled) Increment(key string) {
	l.registry.increment(key, l.labels)
}

func (l labeled) Duration(key string, duration time.Duration) {
	l.registry.observe(key, l.labels, duration)
}

func labelNames(labels Labels) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func labelsOf(m *dto.Metric) Labels {
	labels := make(Labels, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	return labels
}

func seriesName(key string, labels Labels) string {
	if len(labels) == 0 {
		return key
	}

	names := labelNames(labels)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+`="`+labels[name]+`"`)
	}
	return key + "{" + strings.Join(parts, ",") + "}"
}
