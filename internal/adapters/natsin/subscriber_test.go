// internal/adapters/natsin/subscriber_test.go
package natsin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestrouter/internal/adapters/event"
	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
	"ingestrouter/internal/platform/workerpool"
)

type recordingHandler struct {
	mu       sync.Mutex
	payloads []string
	deadline bool
}

func (h *recordingHandler) HandlePayload(ctx context.Context, source string, payload []byte) event.Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, string(payload))
	_, h.deadline = ctx.Deadline()
	return event.Report{Source: source, Outcome: "succeeded"}
}

func TestSubscriber_OnMessageInline(t *testing.T) {
	h := &recordingHandler{}
	s := NewSubscriber(Config{Subject: "a2e.raw", Timeout: time.Minute}, nil, h, nil, logx.NewDiscard())

	s.onMessage(&nats.Msg{Subject: "a2e.raw", Data: []byte(`{"Records": []}`)})

	require.Len(t, h.payloads, 1)
	assert.Equal(t, `{"Records": []}`, h.payloads[0])
	assert.True(t, h.deadline, "per-batch timeout applied")
}

func TestSubscriber_OnMessageThroughPool(t *testing.T) {
	h := &recordingHandler{}
	pool := workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{Workers: 2, Logger: logx.NewDiscard()})
	pool.Start()
	s := NewSubscriber(Config{Subject: "a2e.raw"}, nil, h, pool, logx.NewDiscard())

	for i := 0; i < 5; i++ {
		s.onMessage(&nats.Msg{Subject: "a2e.raw", Data: []byte("{}")})
	}
	pool.Stop()

	assert.Len(t, h.payloads, 5)
	assert.False(t, h.deadline)
}

func TestSubscriber_RateLimitedDropsOnShutdown(t *testing.T) {
	h := &recordingHandler{}
	s := NewSubscriber(Config{Subject: "a2e.raw", Rate: 0.001}, nil, h, nil, logx.NewDiscard())

	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx

	s.onMessage(&nats.Msg{Subject: "a2e.raw", Data: []byte("{}")})
	cancel()
	s.onMessage(&nats.Msg{Subject: "a2e.raw", Data: []byte("{}")})

	assert.Len(t, h.payloads, 1, "second message waits for a token and is dropped on cancel")
}

func TestSubscriber_StartWithoutConnection(t *testing.T) {
	s := NewSubscriber(Config{Subject: "a2e.raw"}, nil, &recordingHandler{}, nil, logx.NewDiscard())

	err := s.Start(context.Background())

	assert.ErrorIs(t, err, errors.ErrMissingConfig)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", logx.NewDiscard(), nats.Timeout(100*time.Millisecond), nats.MaxReconnects(0))

	assert.ErrorIs(t, err, errors.ErrTransportUnavailable)
}

func TestSubscriber_PoolOutlivesRootCancel(t *testing.T) {
	h := &recordingHandler{}
	root, cancel := context.WithCancel(context.Background())
	pool := workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
		Workers: 1,
		Logger:  logx.NewDiscard(),
		Parent:  context.WithoutCancel(root),
	})
	pool.Start()
	s := NewSubscriber(Config{Subject: "a2e.raw", Rate: 100}, nil, h, pool, logx.NewDiscard())

	cancel()
	for i := 0; i < 3; i++ {
		s.onMessage(&nats.Msg{Subject: "a2e.raw", Data: []byte("{}")})
	}
	pool.Stop()

	assert.Len(t, h.payloads, 3, "messages delivered while draining are still handled")
}
