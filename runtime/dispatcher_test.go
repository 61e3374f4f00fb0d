package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/observability"
)

// chanSink records deliveries on a buffered channel.
type chanSink struct {
	ch chan event.Outbound
}

func newChanSink() chanSink {
	return chanSink{ch: make(chan event.Outbound, 16)}
}

func (s chanSink) Consume(_ context.Context, e event.Outbound) error {
	s.ch <- e
	return nil
}

func (s chanSink) drain(t *testing.T, n int) []event.Outbound {
	t.Helper()
	out := make([]event.Outbound, 0, n)
	for len(out) < n {
		select {
		case e := <-s.ch:
			out = append(out, e)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func newTestDispatcher(bufferSize int) *Dispatcher {
	log := slog.Default()
	return NewDispatcher(log, observability.NewMonitoringManager(log), bufferSize, 100*time.Millisecond)
}

func TestDispatcher_Delivers_In_Enqueue_Order(t *testing.T) {
	req := require.New(t)
	d := newTestDispatcher(64)
	conn := domain.NewConnID()
	sink := newChanSink()
	d.Attach(conn, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Dispatch(event.NewMessage{Nickname: "alice", Message: "first"}, []domain.ConnID{conn})
	d.Dispatch(event.NewMessage{Nickname: "alice", Message: "second"}, []domain.ConnID{conn})
	d.Dispatch(event.UserLeft{Nickname: "alice"}, []domain.ConnID{conn})

	got := sink.drain(t, 3)
	req.Equal("first", got[0].(event.NewMessage).Message)
	req.Equal("second", got[1].(event.NewMessage).Message)
	req.Equal("user_left", got[2].Name())
}

func TestDispatcher_Skips_Detached_Connections(t *testing.T) {
	req := require.New(t)
	d := newTestDispatcher(64)

	stayer := domain.NewConnID()
	leaver := domain.NewConnID()
	stayerSink := newChanSink()
	d.Attach(stayer, stayerSink)
	d.Attach(leaver, newChanSink())
	d.Detach(leaver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// Gone between enqueue and delivery: best effort means skipped
	d.Dispatch(event.NewMessage{Message: "hi"}, []domain.ConnID{leaver, stayer})

	got := stayerSink.drain(t, 1)
	req.Equal("hi", got[0].(event.NewMessage).Message)
}

func TestDispatcher_Full_Queue_Drops_Without_Blocking(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	monitoring := observability.NewMonitoringManager(log)
	d := NewDispatcher(log, monitoring, 1, 100*time.Millisecond)
	conn := domain.NewConnID()
	d.Attach(conn, newChanSink())

	// No Run loop draining: the second dispatch must not block
	done := make(chan struct{})
	go func() {
		d.Dispatch(event.NewMessage{Message: "kept"}, []domain.ConnID{conn})
		d.Dispatch(event.NewMessage{Message: "dropped"}, []domain.ConnID{conn})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Dispatch blocked on a full queue")
	}
	req.Equal(uint64(1), monitoring.GetLatest().EventsDropped)
}

func TestDispatcher_Empty_Target_Set_Is_NoOp(t *testing.T) {
	req := require.New(t)
	d := newTestDispatcher(1)

	d.Dispatch(event.NewMessage{Message: "nobody"}, nil)

	// The queue slot is still free
	select {
	case d.queue <- outboundEnvelope{}:
	default:
		req.Fail("empty dispatch should not consume queue capacity")
	}
}
