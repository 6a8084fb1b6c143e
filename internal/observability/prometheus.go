package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports the same observations as Inmem through a registry.
type Prometheus struct {
	jobDuration     *prometheus.HistogramVec
	jobsRejected    *prometheus.CounterVec
	frames          *prometheus.CounterVec
	frameBytes      prometheus.Histogram
	storeDuration   prometheus.Histogram
	lookupDuration  *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
	publishDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

var msBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000}

// NewPrometheus creates the collectors under namespace and registers them
// with reg. Registration errors (duplicate names) are returned as is.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "job_duration_ms",
			Help:      "Time spent executing pool jobs",
			Buckets:   msBuckets,
		}, []string{"status"}),
		jobsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_rejected_total",
			Help:      "Jobs dropped at submission",
		}, []string{"reason"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_total",
			Help:      "Frames received from sensors",
		}, []string{"status"}),
		frameBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frame_bytes",
			Help:      "Payload size of received frames",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
		storeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_ms",
			Help:      "Time spent writing readings to postgres",
			Buckets:   msBuckets,
		}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "lookup_duration_ms",
			Help:      "Latest reading lookups by source",
			Buckets:   msBuckets,
		}, []string{"source"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency",
			Buckets:   msBuckets,
		}, []string{"method", "route", "status"}),
		publishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "publish_duration_ms",
			Help:      "Time spent publishing readings",
			Buckets:   msBuckets,
		}, []string{"status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Latest reading cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Latest reading cache misses",
		}),
	}

	for _, c := range []prometheus.Collector{
		p.jobDuration, p.jobsRejected, p.frames, p.frameBytes, p.storeDuration,
		p.lookupDuration, p.httpDuration, p.publishDuration, p.cacheHits, p.cacheMisses,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (p *Prometheus) ObserveJob(durMs float64, ok bool) {
	p.jobDuration.WithLabelValues(status(ok)).Observe(durMs)
}

func (p *Prometheus) IncJobRejected(reason string) {
	p.jobsRejected.WithLabelValues(reason).Inc()
}

func (p *Prometheus) ObserveFrame(bytes int, ok bool) {
	p.frames.WithLabelValues(status(ok)).Inc()
	p.frameBytes.Observe(float64(bytes))
}

func (p *Prometheus) ObserveStore(dbWriteMs float64) {
	p.storeDuration.Observe(dbWriteMs)
}

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookupDuration.WithLabelValues(source).Observe(cacheMs + dbMs)
}

func (p *Prometheus) ObserveHTTP(method, route string, code int, durMs float64) {
	p.httpDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(durMs)
}

func (p *Prometheus) ObservePublish(durMs float64, ok bool) {
	p.publishDuration.WithLabelValues(status(ok)).Observe(durMs)
}

func (p *Prometheus) IncCacheHit()  { p.cacheHits.Inc() }
func (p *Prometheus) IncCacheMiss() { p.cacheMisses.Inc() }
