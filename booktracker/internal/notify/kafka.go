package notify

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Kafka publishes every notification to a topic.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
	now      func() time.Time
}

func NewKafka(producer sarama.SyncProducer, topic string, log *zap.Logger) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
		log:      log.Named("kafka"),
		now:      time.Now,
	}
}

func (k *Kafka) Success(msg string) { k.enqueue(LevelSuccess, msg) }
func (k *Kafka) Error(msg string)   { k.enqueue(LevelError, msg) }

func (k *Kafka) enqueue(level Level, msg string) {
	data, err := json.Marshal(Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		Timestamp: k.now().UTC(),
	})
	if err != nil {
		k.log.Warn("json.Marshal", zap.Error(err))
		return
	}
	m := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(level),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = k.producer.SendMessage(m); err != nil {
		k.log.Warn("producer.SendMessage", zap.Error(err), zap.String("topic", k.topic))
	}
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
