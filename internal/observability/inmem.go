package observability

import "sync"

type observe struct {
	Kind   string
	Label  string
	Status int
	Dur    float64
	Extra  float64
	OK     bool
}

// Inmem keeps the last max observations plus a few running totals, for tests
// and diagnostics.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
		jobsOK, jobsFailed   int
		rejected             map[string]int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

func (m *Inmem) ObserveJob(durMs float64, ok bool) {
	m.mu.Lock()
	if ok {
		m.totals.jobsOK++
	} else {
		m.totals.jobsFailed++
	}
	m.mu.Unlock()
	m.push(&observe{Kind: "job", Dur: durMs, OK: ok})
}

func (m *Inmem) IncJobRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.totals.rejected == nil {
		m.totals.rejected = make(map[string]int)
	}
	m.totals.rejected[reason]++
}

func (m *Inmem) ObserveFrame(bytes int, ok bool) {
	m.push(&observe{Kind: "frame", Extra: float64(bytes), OK: ok})
}

func (m *Inmem) ObserveStore(dbWriteMs float64) {
	m.push(&observe{Kind: "store", Dur: dbWriteMs, OK: true})
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Label: source, Dur: cacheMs, Extra: dbMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Label: method + " " + route, Status: status, Dur: durMs})
}

func (m *Inmem) ObservePublish(durMs float64, ok bool) {
	m.push(&observe{Kind: "publish", Dur: durMs, OK: ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}
func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// Jobs returns how many jobs finished normally and how many panicked.
func (m *Inmem) Jobs() (ok, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.jobsOK, m.totals.jobsFailed
}

func (m *Inmem) Rejected(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.rejected[reason]
}

func (m *Inmem) CacheStats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.cacheHits, m.totals.cacheMiss
}
