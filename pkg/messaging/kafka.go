package messaging

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/employee-admin/pkg/config"
)

// NewKafkaWriter returns a writer for the configured lifecycle topic, or nil
// when no brokers are configured.
func NewKafkaWriter(cfg config.EventsConfig) *kafka.Writer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}
