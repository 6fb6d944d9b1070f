package memory

import (
	"context"
	"testing"
	"time"

	"github.com/techflow/techflow-backend/pkg/kv"
)

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected 'v', got %q", got)
	}

	if _, err := s.Get(ctx, "missing"); err != kv.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpiration(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); err != kv.ErrNotFound {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestDelExists(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	defer s.Close()

	s.SetString(ctx, "a", "1")
	s.SetString(ctx, "b", "2")

	n, err := s.Exists(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 keys, got %d", n)
	}

	deleted, err := s.Del(ctx, "a", "c")
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	if _, err := s.Get(ctx, "a"); err != kv.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestIncrBy(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	defer s.Close()

	v, err := s.IncrBy(ctx, "counter", 1)
	if err != nil {
		t.Fatalf("IncrBy failed: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1, got %d", v)
	}

	v, err = s.IncrBy(ctx, "counter", 5)
	if err != nil {
		t.Fatalf("IncrBy failed: %v", err)
	}
	if v != 6 {
		t.Errorf("expected 6, got %d", v)
	}

	v, err = s.DecrBy(ctx, "counter", 2)
	if err != nil {
		t.Fatalf("DecrBy failed: %v", err)
	}
	if v != 4 {
		t.Errorf("expected 4, got %d", v)
	}
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	defer s.Close()

	s.SetString(ctx, "k", "v")

	ttl, err := s.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != -1 {
		t.Errorf("expected -1 for key without expiry, got %v", ttl)
	}

	ok, err := s.Expire(ctx, "k", time.Minute)
	if err != nil || !ok {
		t.Fatalf("Expire failed: ok=%v err=%v", ok, err)
	}

	ttl, err = s.TTL(ctx, "k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl in (0, 1m], got %v", ttl)
	}
}
