package prommetrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"id5multiplexing/interfaces"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ interfaces.MeterRegistry = (*Registry)(nil)

// Registry is an interfaces.MeterRegistry backed by a private prometheus registry.
//
// Meter names are dotted ("id5.leader.uid.duplicate") and exported with underscores.
// A name is bound to the tag keys of its first use; a later use with other keys gets a working meter
// that is not exported.
type Registry struct {
	namespace string
	reg       *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	summaries  map[string]*prometheus.SummaryVec
}

// New creates a Registry. namespace prefixes every exported name and may be empty.
func New(namespace string) *Registry {
	return &Registry{
		namespace:  namespace,
		reg:        prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		summaries:  make(map[string]*prometheus.SummaryVec),
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) Counter(name string, tags map[string]string) interfaces.Counter {
	keys, values := splitTags(tags)
	r.mu.Lock()
	defer r.mu.Unlock()
	id := vecID(name, keys)
	vec, ok := r.counters[id]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      metricName(name),
			Help:      name,
		}, keys)
		r.register(vec)
		r.counters[id] = vec
	}
	return counter{c: vec.WithLabelValues(values...)}
}

func (r *Registry) Timer(name string, tags map[string]string) interfaces.Timer {
	keys, values := splitTags(tags)
	r.mu.Lock()
	defer r.mu.Unlock()
	id := vecID(name, keys)
	vec, ok := r.histograms[id]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      metricName(name) + "_seconds",
			Help:      name,
			Buckets:   prometheus.DefBuckets,
		}, keys)
		r.register(vec)
		r.histograms[id] = vec
	}
	return timer{o: vec.WithLabelValues(values...)}
}

func (r *Registry) Summary(name string, tags map[string]string) interfaces.Summary {
	keys, values := splitTags(tags)
	r.mu.Lock()
	defer r.mu.Unlock()
	id := vecID(name, keys)
	vec, ok := r.summaries[id]
	if !ok {
		vec = prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  r.namespace,
			Name:       metricName(name),
			Help:       name,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, keys)
		r.register(vec)
		r.summaries[id] = vec
	}
	return summary{o: vec.WithLabelValues(values...)}
}

// register ignores conflicts: the collector keeps working unexported.
func (r *Registry) register(c prometheus.Collector) {
	_ = r.reg.Register(c)
}

type counter struct{ c prometheus.Counter }

func (c counter) Inc() { c.c.Inc() }

// Add drops negative values; prometheus counters panic on them.
func (c counter) Add(v float64) {
	if v < 0 {
		return
	}
	c.c.Add(v)
}

type timer struct{ o prometheus.Observer }

func (t timer) Record(d time.Duration) { t.o.Observe(d.Seconds()) }

type summary struct{ o prometheus.Observer }

func (s summary) Record(v float64) { s.o.Observe(v) }

func splitTags(tags map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = tags[k]
	}
	for i, k := range keys {
		keys[i] = metricName(k)
	}
	return keys, values
}

func vecID(name string, keys []string) string {
	return name + "|" + strings.Join(keys, ",")
}

func metricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
