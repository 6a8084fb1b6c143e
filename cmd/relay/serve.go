package main

import (
	"context"

	"go.uber.org/zap"
)

type server func(ctx context.Context) error

// serveAll runs every server until ctx is cancelled or one of them returns,
// then cancels the rest and waits for all of them to finish shutting down.
func serveAll(ctx context.Context, cancel context.CancelFunc, log *zap.Logger, servers ...server) {
	errCh := make(chan error, len(servers))
	for _, s := range servers {
		go func(s server) { errCh <- s(ctx) }(s)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down servers")
	}()

	for range servers {
		if err := <-errCh; err != nil {
			log.Error("server failed", zap.Error(err))
		}
		cancel()
	}
}
