package notify_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := notify.NewConsole(&buf)
	c.Success("Loaded 2 books")
	c.Error("Failed to load books")
	require.Equal(t, "[ok] Loaded 2 books\n[!!] Failed to load books\n", buf.String())
}

func TestMulti(t *testing.T) {
	t.Parallel()
	var a, b notify.Recorder
	n := notify.Multi(&a, &b, notify.NewLog(zap.NewNop()))
	n.Success("one")
	n.Error("two")
	require.Equal(t, []string{"one", "two"}, a.Messages())
	require.Equal(t, []string{"two"}, b.Errors())
	require.Equal(t, []string{"one"}, b.Successes())
}

func TestKafka(t *testing.T) {
	t.Parallel()
	producer := mocks.NewSyncProducer(t, kafka.Config{ClientID: "test"}.SaramaConfig())
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		require.Equal(t, "notifications", m.Topic)
		raw, err := m.Value.Encode()
		require.NoError(t, err)
		var n notify.Notification
		require.NoError(t, json.Unmarshal(raw, &n))
		require.Equal(t, notify.LevelError, n.Level)
		require.Equal(t, "Not Found: not found", n.Message)
		require.NotEmpty(t, n.ID)
		return nil
	})
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	k := notify.NewKafka(producer, "notifications", zap.NewNop())
	k.Error("Not Found: not found")
	// a failing broker must not panic or block the caller
	k.Success("Loaded 1 books")
	require.NoError(t, k.Close())
}
