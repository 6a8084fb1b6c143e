package observability

// Metrics is the sink every component reports into. Implementations must be
// safe for concurrent use: pool workers call it from their own goroutines.
type Metrics interface {
	ObserveJob(durMs float64, ok bool)
	IncJobRejected(reason string)
	ObserveFrame(bytes int, ok bool)
	ObserveStore(dbWriteMs float64)
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObservePublish(durMs float64, ok bool)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveJob(float64, bool)                 {}
func (Noop) IncJobRejected(string)                    {}
func (Noop) ObserveFrame(int, bool)                   {}
func (Noop) ObserveStore(float64)                     {}
func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObservePublish(float64, bool)             {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
