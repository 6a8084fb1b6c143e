package pool

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/TemirB/sensor-relay/internal/observability"
	"go.uber.org/zap"
)

type State int32

const (
	Running State = iota
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type worker struct {
	id      int
	state   atomic.Int32
	done    chan struct{}
	err     *PanicError
	logger  *zap.Logger
	metrics observability.Metrics
}

func newWorker(id int, logger *zap.Logger, metrics observability.Metrics) *worker {
	return &worker{
		id:      id,
		done:    make(chan struct{}),
		logger:  logger.With(zap.Int("worker", id)),
		metrics: metrics,
	}
}

// run is the worker goroutine. It must be started after q.attach so that a
// push racing with startup never sees zero consumers.
func (w *worker) run(q *queue, alive *atomic.Int32) {
	defer func() {
		w.state.Store(int32(Terminated))
		q.detach()
		alive.Add(-1)
		close(w.done)
	}()

	w.logger.Debug("worker started")
	for {
		job, ok := q.pop()
		if !ok {
			w.state.Store(int32(Draining))
			w.logger.Debug("worker disconnected; shutting down")
			return
		}

		w.logger.Debug("worker got a job; executing")
		if perr := w.execute(job); perr != nil {
			w.err = perr
			w.logger.Error("job panicked; worker exits",
				zap.Any("panic", perr.Value),
				zap.ByteString("stack", perr.Stack),
			)
			return
		}
	}
}

func (w *worker) execute(job Job) (perr *PanicError) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			perr = &PanicError{Worker: w.id, Value: r, Stack: debug.Stack()}
		}
		w.metrics.ObserveJob(float64(time.Since(start).Microseconds())/1000.0, perr == nil)
	}()

	job()
	return nil
}

// join blocks until the worker goroutine has returned and reports how it ended.
func (w *worker) join() error {
	<-w.done
	if w.err != nil {
		return w.err
	}
	return nil
}

func (w *worker) State() State {
	return State(w.state.Load())
}
