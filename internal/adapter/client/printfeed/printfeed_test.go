package printfeed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ontoptea/orderhub/internal/adapter/client/printfeed"
	"github.com/ontoptea/orderhub/internal/adapter/config"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePrinter struct {
	fail bool
	jobs chan *domain.PrintJob
}

func newFakePrinter(fail bool) *fakePrinter {
	return &fakePrinter{fail: fail, jobs: make(chan *domain.PrintJob, 1)}
}

func (p *fakePrinter) Print(job *domain.PrintJob) error {
	if p.fail {
		return assert.AnError
	}
	p.jobs <- job
	return nil
}

func testJob() json.RawMessage {
	job := domain.PrintJob{
		Order:   &domain.Order{Number: "250801120000123"},
		Content: "ticket body\n",
	}
	data, _ := json.Marshal(job)
	return data
}

// printServer upgrades one connection, checks the join handshake and sends
// one print-order event per payload.
func printServer(t *testing.T, payloads ...json.RawMessage) (*httptest.Server, chan string) {
	t.Helper()

	joined := make(chan string, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var join map[string]string
		if err := conn.ReadJSON(&join); err != nil {
			return
		}
		joined <- join["room"]

		for _, data := range payloads {
			_ = conn.WriteJSON(domain.NotificationEvent{
				Type:      domain.EventPrintJob,
				Data:      data,
				Timestamp: time.Now(),
			})
		}

		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv, joined
}

func runSubscriber(t *testing.T, srv *httptest.Server, primary, fallback *fakePrinter) (context.CancelFunc, chan error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub, err := printfeed.NewSubscriber(&config.PrintClient{ServerURL: url}, primary, fallback, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	return cancel, done
}

func TestSubscriber_PrintsJob(t *testing.T) {
	srv, joined := printServer(t, testJob())
	primary := newFakePrinter(false)
	fallback := newFakePrinter(false)

	cancel, done := runSubscriber(t, srv, primary, fallback)
	defer cancel()

	select {
	case room := <-joined:
		assert.Equal(t, domain.RoomPrintClient, room)
	case <-time.After(2 * time.Second):
		t.Fatal("client never joined")
	}

	select {
	case job := <-primary.jobs:
		assert.Equal(t, "250801120000123", job.Order.Number)
		assert.Equal(t, "ticket body\n", job.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("job never printed")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never stopped")
	}
}

func TestSubscriber_SkipsJobWithoutOrder(t *testing.T) {
	// A malformed job must not take the client down: the next job on the
	// feed still prints.
	srv, _ := printServer(t, json.RawMessage(`{"printContent":"orphan ticket\n"}`), testJob())
	primary := newFakePrinter(false)
	fallback := newFakePrinter(false)

	cancel, done := runSubscriber(t, srv, primary, fallback)
	defer cancel()

	select {
	case job := <-primary.jobs:
		assert.Equal(t, "250801120000123", job.Order.Number)
	case <-time.After(2 * time.Second):
		t.Fatal("job after the malformed one never printed")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never stopped")
	}
}

func TestSubscriber_FallsBackOnPrinterFailure(t *testing.T) {
	srv, _ := printServer(t, testJob())
	primary := newFakePrinter(true)
	fallback := newFakePrinter(false)

	cancel, _ := runSubscriber(t, srv, primary, fallback)
	defer cancel()

	select {
	case job := <-fallback.jobs:
		assert.Equal(t, "250801120000123", job.Order.Number)
	case <-time.After(2 * time.Second):
		t.Fatal("fallback never used")
	}
}

func TestSubscriber_ReconnectsAfterRefusal(t *testing.T) {
	// A dead endpoint must not end the loop, only ctx cancellation does.
	sub, err := printfeed.NewSubscriber(&config.PrintClient{ServerURL: "ws://127.0.0.1:1/ws"},
		newFakePrinter(false), newFakePrinter(false), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err = sub.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}