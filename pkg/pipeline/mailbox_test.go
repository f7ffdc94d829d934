package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestMailbox_LatestWins(t *testing.T) {
	m := NewMailbox[int]()

	// Producer outruns the consumer: only the newest value survives.
	for i := 1; i <= 10; i++ {
		m.Put(i)
	}

	v, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10 {
		t.Errorf("expected newest value 10, got %d", v)
	}

	if got := m.Drops(); got != 9 {
		t.Errorf("expected 9 drops, got %d", got)
	}
}

func TestMailbox_NoBacklog(t *testing.T) {
	m := NewMailbox[int]()

	for i := 0; i < 5; i++ {
		m.Put(i)
	}

	// Exactly one value must be pending.
	if _, err := m.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Get(ctx); err == nil {
		t.Error("expected no second value to be pending")
	}
}

func TestMailbox_GetCancellation(t *testing.T) {
	m := NewMailbox[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Get(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMailbox_OrderPreserved(t *testing.T) {
	m := NewMailbox[int]()
	ctx := context.Background()

	// With a keeping-up consumer, values arrive in order and nothing is
	// dropped.
	for i := 0; i < 5; i++ {
		m.Put(i)
		v, err := m.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != i {
			t.Errorf("expected %d, got %d", i, v)
		}
	}
	if got := m.Drops(); got != 0 {
		t.Errorf("expected 0 drops, got %d", got)
	}
}
