package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalmart/storefront/internal/repository"
)

type eventRepoMock struct {
	mu        sync.Mutex
	events    []*repository.OutboxEvent
	processed []int64
	fetchErr  error
	markErr   error
}

func (m *eventRepoMock) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, m.fetchErr
}

func (m *eventRepoMock) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.processed = append(m.processed, id)
	return nil
}

func (m *eventRepoMock) processedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.processed...)
}

type writerMock struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (m *writerMock) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *writerMock) written() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.messages...)
}

func newTestPoller(repo EventRepository, writer MessageWriter) *OutboxPoller {
	return &OutboxPoller{
		tick:      time.Millisecond,
		batchSize: 100,
		repo:      repo,
		writer:    writer,
	}
}

func TestProcessUnpublishedEvents_PublishesThenMarks(t *testing.T) {
	repo := &eventRepoMock{
		events: []*repository.OutboxEvent{
			{ID: 5, OrderID: 42, EventType: repository.EventOrderPlaced, Payload: []byte(`{"order_id":42}`)},
			{ID: 6, OrderID: 43, EventType: repository.EventOrderPlaced, Payload: []byte(`{"order_id":43}`)},
		},
	}
	writer := &writerMock{}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	msgs := writer.written()
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("42"), msgs[0].Key)
	assert.Equal(t, []byte(`{"order_id":42}`), msgs[0].Value)
	require.Len(t, msgs[0].Headers, 1)
	assert.Equal(t, "event_type", msgs[0].Headers[0].Key)
	assert.Equal(t, []byte(repository.EventOrderPlaced), msgs[0].Headers[0].Value)

	assert.Equal(t, []int64{5, 6}, repo.processedIDs())
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventUnprocessed(t *testing.T) {
	repo := &eventRepoMock{
		events: []*repository.OutboxEvent{
			{ID: 5, OrderID: 42, EventType: repository.EventOrderPlaced, Payload: []byte(`{}`)},
		},
	}
	writer := &writerMock{err: errors.New("broker unavailable")}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	assert.Empty(t, repo.processedIDs(), "unpublished events must stay in the outbox")
}

func TestProcessUnpublishedEvents_MarkFailureDoesNotStopBatch(t *testing.T) {
	repo := &eventRepoMock{
		events: []*repository.OutboxEvent{
			{ID: 5, OrderID: 42, EventType: repository.EventOrderPlaced, Payload: []byte(`{}`)},
		},
		markErr: errors.New("connection reset"),
	}
	writer := &writerMock{}

	newTestPoller(repo, writer).processUnpublishedEvents(context.Background())

	require.Len(t, writer.written(), 1)
	assert.Empty(t, repo.processedIDs())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := &eventRepoMock{}
	writer := &writerMock{}
	poller := newTestPoller(repo, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
