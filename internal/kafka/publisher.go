package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/TemirB/sensor-relay/internal/domain"
	"github.com/TemirB/sensor-relay/internal/observability"
	"github.com/TemirB/sensor-relay/internal/protocol"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const contentType = "application/x-protobuf"

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher forwards stored readings to a topic, keyed by device so that one
// device's readings land on one partition.
type Publisher struct {
	writer  Writer
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafkago.RequireOne,
	}
}

func NewPublisher(writer Writer, logger *zap.Logger, metrics observability.Metrics) *Publisher {
	return &Publisher{
		writer:  writer,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *Publisher) Publish(ctx context.Context, r *domain.Reading) error {
	start := time.Now()
	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatUint(uint64(r.DeviceID), 10)),
		Value: protocol.MarshalReading(*r),
		Time:  r.ReadTime,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte(contentType)},
		},
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	p.metrics.ObservePublish(elapsed, err == nil)

	if err != nil {
		p.logger.Warn("publish failed",
			zap.Uint32("device_id", r.DeviceID),
			zap.Uint64("event_id", r.EventID),
			zap.Error(err),
		)
		return err
	}
	p.logger.Debug("reading published",
		zap.Uint32("device_id", r.DeviceID),
		zap.Uint64("event_id", r.EventID),
		zap.Float64("elapsed_ms", elapsed),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
