package consumers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/resale-ops/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages and then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
	fetchErr  error
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if f.fetchErr != nil {
		err := f.fetchErr
		f.fetchErr = nil
		f.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(f.messages) > 0 {
		msg := f.messages[0]
		f.messages = f.messages[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) committedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.committed))
	for _, m := range f.committed {
		keys = append(keys, string(m.Key))
	}
	return keys
}

func newTestConsumer(reader *fakeReader) (*KafkaConsumer, *[]string) {
	var topics []string
	c := &KafkaConsumer{
		logger:    slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		retryWait: time.Millisecond,
		newReader: func(topic, groupID string) MessageReader {
			topics = append(topics, topic+"/"+groupID)
			return reader
		},
	}
	return c, &topics
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092,localhost:9093",
		ImportTopic:   "test-topic",
		ConsumerGroup: "test-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.newReader)
	assert.Equal(t, logger, consumer.logger)
}

func TestKafkaConsumer_SubscribeCommitsHandledMessages(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Key: []byte("ok-1"), Value: []byte("a")},
		{Key: []byte("bad"), Value: []byte("b")},
		{Key: []byte("ok-2"), Value: []byte("c")},
	}}
	consumer, topics := newTestConsumer(reader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan string, 3)
	err := consumer.Subscribe(ctx, "imports", "workers", func(_ context.Context, key, _ []byte) error {
		handled <- string(key)
		if string(key) == "bad" {
			return errors.New("handler failed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"imports/workers"}, *topics)

	for i := 0; i < 3; i++ {
		select {
		case <-handled:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not called")
		}
	}

	require.Eventually(t, func() bool {
		return len(reader.committedKeys()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ok-1", "ok-2"}, reader.committedKeys())

	cancel()
	require.NoError(t, consumer.Close())
	assert.True(t, reader.closed)
}

func TestKafkaConsumer_SubscribeRetriesAfterFetchError(t *testing.T) {
	reader := &fakeReader{
		fetchErr: errors.New("broker gone"),
		messages: []kafka.Message{{Key: []byte("after-retry")}},
	}
	consumer, _ := newTestConsumer(reader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan string, 1)
	require.NoError(t, consumer.Subscribe(ctx, "imports", "workers", func(_ context.Context, key, _ []byte) error {
		handled <- string(key)
		return nil
	}))

	select {
	case key := <-handled:
		assert.Equal(t, "after-retry", key)
	case <-time.After(2 * time.Second):
		t.Fatal("message after fetch error was not handled")
	}

	cancel()
	require.NoError(t, consumer.Close())
}

func TestKafkaConsumer_SubscribeRequiresTopic(t *testing.T) {
	consumer, _ := newTestConsumer(&fakeReader{})
	err := consumer.Subscribe(context.Background(), "", "workers", nil)
	require.Error(t, err)
}

func TestKafkaConsumer_CloseWithoutSubscriptions(t *testing.T) {
	consumer, _ := newTestConsumer(&fakeReader{})
	require.NoError(t, consumer.Close())
}
