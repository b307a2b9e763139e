package producer

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

// Producer mirrors events to a Kafka topic. It is synchronous: Send returns
// after every in-sync replica has the record.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func New(brokerList []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewSyncProducer(brokerList, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka.producer.New: %w", err)
	}

	return NewWithSyncProducer(producer, topic), nil
}

func NewWithSyncProducer(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: producer, topic: topic}
}

// Send keys the record so all events of one order land in one partition.
func (p *Producer) Send(ctx context.Context, key string, value []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recordHeaders := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		recordHeaders = append(recordHeaders, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: recordHeaders,
	})
	if err != nil {
		return fmt.Errorf("kafka.producer.Send: topic %s: %w", p.topic, err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
