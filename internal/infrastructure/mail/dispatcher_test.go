package mail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell/internal/core/ports"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []ports.Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email ports.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDispatcher_DeliversEnqueuedEmail(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{}
	d := NewDispatcher(2, sender, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(ports.Email{To: "alice@example.com", Subject: "hi", Kind: "activation"})
	d.Enqueue(ports.Email{To: "bob@example.com", Subject: "hi", Kind: "two_factor"})

	waitFor(t, func() bool { return sender.count() == 2 })
}

func TestDispatcher_SendFailureDoesNotPropagate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{err: context.DeadlineExceeded}
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(ctx)

	// Enqueue must not panic or block on a failing sender.
	d.Enqueue(ports.Email{To: "alice@example.com", Subject: "hi", Kind: "activation"})
	waitFor(t, func() bool { return sender.count() == 1 })
}

func TestDispatcher_EnqueueDropsWhenQueueFull(t *testing.T) {
	// Workers never started: the single queue fills and stays full.
	d := NewDispatcher(1, &recordingSender{}, zerolog.Nop())

	// Overfill past capacity. Without the drop path this would block the
	// caller forever and the test would time out.
	for i := 0; i < channelBuffer+10; i++ {
		d.Enqueue(ports.Email{To: "alice@example.com", Subject: "hi", Kind: "activation"})
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("queue holds %d emails, want %d with the overflow dropped", got, channelBuffer)
	}
}

func TestDispatcher_SameRecipientSameWorker(t *testing.T) {
	d := NewDispatcher(8, &recordingSender{}, zerolog.Nop())
	first := d.shardIndex("alice@example.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("alice@example.com") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}
