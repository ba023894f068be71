package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/board-result-api/internal/models"
)

type fakePublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakePublisher) Ping(context.Context) error { return f.err }

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.channels...)
}

type fakeOutbox struct {
	mu      sync.Mutex
	created []models.NotificationRequest
	sent    []string
	failed  []string
}

func (f *fakeOutbox) Create(_ context.Context, req *models.NotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = "outbox-1"
	f.created = append(f.created, *req)
	return nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestEmitterPublishesOnTypedChannel(t *testing.T) {
	pub := &fakePublisher{}
	box := &fakeOutbox{}
	emitter := New(pub, box, nil, Config{Enabled: true, ChannelPrefix: "result", Workers: 1, BufferSize: 8}, nil)
	emitter.Start(context.Background())
	defer emitter.Stop()

	emitter.Emit(models.ResultEvent{
		StudentID: "stu-1",
		ResultID:  "res-1",
		Type:      models.EventResultPublished,
		Timestamp: time.Now().UTC(),
	})

	waitFor(t, func() bool { return len(pub.published()) == 1 })
	require.Equal(t, []string{"result.published"}, pub.published())

	pub.mu.Lock()
	payload := pub.payloads[0]
	pub.mu.Unlock()
	var event models.ResultEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, "res-1", event.ResultID)

	waitFor(t, func() bool {
		box.mu.Lock()
		defer box.mu.Unlock()
		return len(box.sent) == 1
	})
	require.Equal(t, []string{"outbox-1"}, box.sent)
}

func TestEmitterSwallowsPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	box := &fakeOutbox{}
	emitter := New(pub, box, nil, Config{Enabled: true, Workers: 1, BufferSize: 8}, nil)
	emitter.Start(context.Background())
	defer emitter.Stop()

	emitter.Emit(models.ResultEvent{StudentID: "stu-1", ResultID: "res-1", Type: models.EventResultPublished})

	waitFor(t, func() bool {
		box.mu.Lock()
		defer box.mu.Unlock()
		return len(box.failed) == 1
	})
	require.Empty(t, pub.published())
}

func TestEmitterDisabledDropsSilently(t *testing.T) {
	pub := &fakePublisher{}
	emitter := New(pub, nil, nil, Config{Enabled: false}, nil)
	emitter.Start(context.Background())
	defer emitter.Stop()

	emitter.Emit(models.ResultEvent{Type: models.EventResultPublished})
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, pub.published())
}

func TestEmitterBulkEmitsOnePerEvent(t *testing.T) {
	pub := &fakePublisher{}
	emitter := New(pub, nil, nil, Config{Enabled: true, Workers: 2, BufferSize: 16}, nil)
	emitter.Start(context.Background())
	defer emitter.Stop()

	events := []models.ResultEvent{
		{ResultID: "res-1", Type: models.EventResultPublished},
		{ResultID: "res-2", Type: models.EventResultPublished},
		{ResultID: "res-3", Type: models.EventResultPublished},
	}
	emitter.EmitBulk(events)

	waitFor(t, func() bool { return len(pub.published()) == 3 })
}
