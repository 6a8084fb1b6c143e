package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/TemirB/sensor-relay/internal/config"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrNoBrokers  = errors.New("no kafka brokers configured")
	ErrEmptyTopic = errors.New("empty topic")
)

const topicReadyTimeout = 10 * time.Second

// EnsureTopic creates cfg.Topic when it is missing and waits until its
// partitions show up in the metadata. Safe to call from every relay instance.
func EnsureTopic(ctx context.Context, cfg config.Kafka, partitions, replication int, log *zap.Logger) error {
	if len(cfg.Brokers) == 0 {
		return ErrNoBrokers
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	dialer := &kafkago.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	if n := partitionCount(conn, topic); n > 0 {
		log.Info("kafka topic exists", zap.String("topic", topic), zap.Int("partitions", n))
		return nil
	}

	if err := createTopic(ctx, dialer, conn, kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replication,
	}, log); err != nil {
		return err
	}
	return waitForPartitions(ctx, conn, topic, partitions, log)
}

func partitionCount(conn *kafkago.Conn, topic string) int {
	parts, err := conn.ReadPartitions(topic)
	if err != nil {
		return 0
	}
	return len(parts)
}

// createTopic goes through the controller; a concurrent creation by another
// instance is not an error.
func createTopic(ctx context.Context, dialer *kafkago.Dialer, conn *kafkago.Conn, tc kafkago.TopicConfig, log *zap.Logger) error {
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("get controller: %w", err)
	}
	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))

	ctrl, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", addr, err)
	}
	defer ctrl.Close()

	log.Info("creating kafka topic",
		zap.String("topic", tc.Topic),
		zap.Int("partitions", tc.NumPartitions),
		zap.Int("replication", tc.ReplicationFactor),
	)
	err = ctrl.CreateTopics(tc)
	if err != nil && !errors.Is(err, kafkago.TopicAlreadyExists) {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

func waitForPartitions(ctx context.Context, conn *kafkago.Conn, topic string, want int, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, topicReadyTimeout)
	defer cancel()
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()

	for {
		if n := partitionCount(conn, topic); n >= want {
			log.Info("kafka topic is ready", zap.String("topic", topic), zap.Int("partitions", n))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %s not visible after creation: %w", topic, ctx.Err())
		case <-tick.C:
		}
	}
}
