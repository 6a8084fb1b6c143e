package httpapi

import (
	"net/http"
	"time"

	"github.com/TemirB/sensor-relay/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServerTimingApp measures the time spent in the handler, adds it as the
// "app" Server-Timing entry right before the headers go out, and reports
// the request to Metrics.ObserveHTTP under its route pattern.
func ServerTimingApp(m observability.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		m = observability.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tw := &timingWriter{ResponseWriter: w, start: start}
			ww := middleware.NewWrapResponseWriter(tw, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.ObserveHTTP(r.Method, route, ww.Status(), sinceMs(start))
		})
	}
}

type timingWriter struct {
	http.ResponseWriter
	start   time.Time
	written bool
}

func (w *timingWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		observability.AppendServerTiming(w.ResponseWriter, "app", sinceMs(w.start), "")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
