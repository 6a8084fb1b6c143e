// Package pool runs submitted jobs on a fixed set of worker goroutines.
//
// Jobs travel through a single unbounded FIFO queue; each job is delivered to
// exactly one worker. Shutdown closes the queue, lets workers drain what is
// already queued and joins them in construction order.
//
//	p := pool.New(4, pool.WithLogger(logger))
//	defer p.Shutdown()
//	p.Submit(func() { handle(conn) })
//
// A panicking job takes its worker down with it: the panic is recovered only
// to be reported when the pool joins that worker, and the pool keeps running
// with one worker less.
package pool
