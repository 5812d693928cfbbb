package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const NotificationsTopic = "booktracker.notifications"

type Config struct {
	// Addrs of the brokers; publishing is off when empty.
	Addrs    []string      `envconfig:"KAFKA_ADDRS"`
	ClientID string        `envconfig:"KAFKA_CLIENT_ID" default:"booktracker"`
	Timeout  time.Duration `envconfig:"KAFKA_TIMEOUT" default:"2s"`
	Retries  int           `envconfig:"KAFKA_RETRIES" default:"1"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

// SaramaConfig is the producer setup shared by real and mock producers.
func (c Config) SaramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	if c.ClientID != "" {
		sc.ClientID = c.ClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = c.Retries
	if c.Timeout > 0 {
		sc.Producer.Timeout = c.Timeout
		sc.Net.DialTimeout = c.Timeout
		sc.Net.WriteTimeout = c.Timeout
		sc.Net.ReadTimeout = c.Timeout
	}
	return sc
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka: no broker addresses")
	}
	return sarama.NewSyncProducer(cfg.Addrs, cfg.SaramaConfig())
}
