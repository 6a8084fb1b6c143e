package pool

import "sync"

// queue is an unbounded MPMC FIFO of jobs. Consumers attach when a worker
// starts and detach when it exits; once nobody is attached, push fails the
// same way a send on a channel with no receivers would.
type queue struct {
	mu        sync.Mutex
	ready     *sync.Cond
	items     []Job
	head      int
	closed    bool
	consumers int
}

func newQueue() *queue {
	q := &queue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

func (q *queue) attach() {
	q.mu.Lock()
	q.consumers++
	q.mu.Unlock()
}

func (q *queue) detach() {
	q.mu.Lock()
	q.consumers--
	q.mu.Unlock()
}

func (q *queue) push(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrShuttingDown
	}
	if q.consumers == 0 {
		return ErrDisconnected
	}
	q.items = append(q.items, job)
	q.ready.Signal()
	return nil
}

// pop blocks until a job is available or the queue is closed and drained.
func (q *queue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.ready.Wait()
	}
	if q.head == len(q.items) {
		return nil, false
	}

	job := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return job, true
}

// close reports whether this call was the one that closed the queue.
func (q *queue) close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.closed = true
	q.ready.Broadcast()
	return true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
