package pool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/TemirB/sensor-relay/internal/observability"
	"go.uber.org/zap"
)

// Job is a one-shot unit of work. It runs at most once, on whichever worker
// pulls it first.
type Job func()

type Pool struct {
	name    string
	workers []*worker
	queue   *queue
	alive   atomic.Int32

	closing  atomic.Bool
	shutdown sync.Once

	logger  *zap.Logger
	metrics observability.Metrics
}

type Option func(*Pool)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithMetrics(m observability.Metrics) Option {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}

func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// New starts size workers, all blocked waiting for work by the time it
// returns. A pool without workers can never make progress, so size < 1 is a
// programming error and panics before anything is started.
func New(size int, opts ...Option) *Pool {
	if size < 1 {
		panic("pool: size must be > 0")
	}

	p := &Pool{
		name:    "pool",
		queue:   newQueue(),
		logger:  zap.NewNop(),
		metrics: observability.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("pool", p.name))

	p.workers = make([]*worker, 0, size)
	for i := 0; i < size; i++ {
		w := newWorker(i, p.logger, p.metrics)
		p.workers = append(p.workers, w)
		p.queue.attach()
		p.alive.Add(1)
		go w.run(p.queue, &p.alive)
	}

	p.logger.Info("pool started", zap.Int("workers", size))
	return p
}

// Submit hands job to the queue and returns immediately. Rejected jobs are
// dropped with a diagnostic; use TrySubmit to learn about the rejection.
func (p *Pool) Submit(job Job) {
	_ = p.TrySubmit(job)
}

// TrySubmit behaves like Submit and additionally returns ErrShuttingDown,
// ErrDisconnected or ErrNilJob when the job was dropped.
func (p *Pool) TrySubmit(job Job) error {
	err := p.enqueue(job)
	if err == nil {
		return nil
	}

	reason := "shutting_down"
	switch {
	case errors.Is(err, ErrDisconnected):
		reason = "disconnected"
	case errors.Is(err, ErrNilJob):
		reason = "nil_job"
	}
	p.metrics.IncJobRejected(reason)
	p.logger.Warn("failed to submit job", zap.Error(err))
	return err
}

func (p *Pool) enqueue(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	if p.closing.Load() {
		return ErrShuttingDown
	}
	return p.queue.push(job)
}

// Shutdown stops accepting jobs, lets the workers drain the queue and waits
// for every one of them to terminate. Abnormal worker exits are logged, not
// returned. Calling it again is a no-op that waits for the first call.
func (p *Pool) Shutdown() {
	p.shutdown.Do(func() {
		p.closing.Store(true)
		p.queue.close()

		for _, w := range p.workers {
			p.logger.Info("shutting down worker", zap.Int("worker", w.id))
			if err := w.join(); err != nil {
				p.logger.Error("failed to join worker", zap.Int("worker", w.id), zap.Error(err))
			}
		}
		p.logger.Info("pool stopped")
	})
}

// Size is the number of workers the pool was built with.
func (p *Pool) Size() int { return len(p.workers) }

// Alive is the number of workers whose goroutine has not returned yet.
func (p *Pool) Alive() int { return int(p.alive.Load()) }

// Pending is the number of queued jobs no worker has pulled yet.
func (p *Pool) Pending() int { return p.queue.len() }

func (p *Pool) States() []State {
	states := make([]State, len(p.workers))
	for i, w := range p.workers {
		states[i] = w.State()
	}
	return states
}
