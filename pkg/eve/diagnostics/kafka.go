package diagnostics

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/tournament"
)

// MessageWriter is the part of a kafka.Writer used by KafkaSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, messages ...kafka.Message) error
	Close() error
}

// KafkaSink publishes events and summaries as JSON messages keyed by the
// tournament's id. The kind header tells them apart.
type KafkaSink struct {
	Writer MessageWriter
	Key    []byte
}

// NewProducer creates an asynchronous kafka writer for the given topic.
func NewProducer(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logrus.Errorf("Kafka: writing %d messages: %v", len(messages), err)
			}
		},
	}
}

// NewKafkaSink creates a sink publishing to the given topic.
func NewKafkaSink(brokers []string, topic, tournamentID string) *KafkaSink {
	return &KafkaSink{
		Writer: NewProducer(brokers, topic),
		Key:    []byte(tournamentID),
	}
}

func (sink *KafkaSink) Trace(event match.Event) {
	sink.publish("event", event)
}

func (sink *KafkaSink) Report(summary tournament.Summary) {
	sink.publish("summary", summary)
}

func (sink *KafkaSink) Finished(result match.Result) {
	sink.publish("result", result)
}

func (sink *KafkaSink) Close() error {
	return sink.Writer.Close()
}

func (sink *KafkaSink) publish(kind string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.Errorf("Kafka: encoding %s: %v", kind, err)
		return
	}

	err = sink.Writer.WriteMessages(context.Background(), kafka.Message{
		Key:     sink.Key,
		Value:   data,
		Headers: []kafka.Header{{Key: "kind", Value: []byte(kind)}},
	})
	if err != nil {
		logrus.Errorf("Kafka: publishing %s: %v", kind, err)
	}
}
