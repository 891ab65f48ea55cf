package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"task-tracker/internal/logging"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by task id so one task's events
// stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates an asynchronous writer for topic. Write errors
// surface through the writer's completion callback and are only logged.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logging.Debugf("kafka delivery of %d event(s) failed: %v\n", len(messages), err)
			}
		},
	}
	return &KafkaPublisher{writer: writer}
}

// Publish enqueues event for delivery.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.TaskID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}

// Handler processes one consumed event.
type Handler func(ctx context.Context, event Event) error

// Consumer reads task events from a topic.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer joins groupID on topic. An empty groupID reads the single
// partition 0 from the latest offset.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	return &Consumer{reader: kafka.NewReader(cfg)}
}

// Run hands every event to handle until ctx is cancelled or handle fails.
// Messages that are not events are skipped.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		event, err := fromMessage(msg)
		if err != nil {
			logging.Debugf("skipping malformed event at offset %d: %v\n", msg.Offset, err)
			continue
		}
		if err := handle(ctx, event); err != nil {
			return err
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func fromMessage(msg kafka.Message) (Event, error) {
	var event Event
	err := json.Unmarshal(msg.Value, &event)
	return event, err
}
