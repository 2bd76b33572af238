package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStore_StoreAndLoad(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.Store(ctx, map[string]string{"user": `{"id":1}`, "token": `"tok"`}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if got, _ := mr.Get("busticket:token"); got != `"tok"` {
		t.Fatalf("expected prefixed key in redis, got %q", got)
	}

	values, err := s.Load(ctx, "user", "token", "missing")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d: %v", len(values), values)
	}
	if values["user"] != `{"id":1}` {
		t.Fatalf("unexpected user value %q", values["user"])
	}
	if _, ok := values["missing"]; ok {
		t.Fatal("absent key should not be returned")
	}
}

func TestStore_Remove(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	_ = s.Store(ctx, map[string]string{"user": "u", "token": "t"})
	if err := s.Remove(ctx, "user", "token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("busticket:user") || mr.Exists("busticket:token") {
		t.Fatal("keys should be gone")
	}
	if err := s.Remove(ctx, "user"); err != nil {
		t.Fatalf("removing a missing key should succeed, got %v", err)
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	values, err := s.Load(context.Background(), "user", "token")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected empty result, got %v", values)
	}
}

func TestStore_UnavailableServer(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	if _, err := s.Load(context.Background(), "user"); err == nil {
		t.Fatal("expected error when redis is down")
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error when redis is down")
	}
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Open(context.Background(), Config{Addr: addr, Timeout: time.Second}); err == nil {
		t.Fatal("expected open to fail")
	}
}

func TestOpen_CustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Config{Addr: mr.Addr(), Prefix: "alt:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Store(context.Background(), map[string]string{"token": `"t"`}); err != nil {
		t.Fatalf("store: %v", err)
	}
	if !mr.Exists("alt:token") || mr.Exists("busticket:token") {
		t.Fatalf("expected key under custom prefix, got %v", mr.Keys())
	}
}
