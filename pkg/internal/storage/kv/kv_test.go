package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryKVBasic(t *testing.T) {
	ctx := context.Background()
	store := &MemoryKV{}

	if err := store.Set(ctx, "a", []byte("hello"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(got) != "hello" {
		t.Fatalf("Get = %q, want %q", got, "hello")
	}

	exists, err := store.Exists(ctx, "a")
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get after delete = %v, want ErrKeyNotFound", err)
	}
}

func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := &MemoryKV{}

	// 负 TTL 生成的包装值应立即视为过期
	encoded, wrapped, err := encodeWithTTL([]byte("soon gone"), -time.Second)
	if err != nil || !wrapped {
		t.Fatalf("encodeWithTTL: wrapped=%v err=%v", wrapped, err)
	}

	store.data.Store("tmp", encoded)

	if _, err := store.Get(ctx, "tmp"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expired key Get = %v, want ErrKeyNotFound", err)
	}

	// 过期键应被惰性删除
	if _, loaded := store.data.Load("tmp"); loaded {
		t.Fatal("expired key should be removed on read")
	}
}

func TestTTLRoundTrip(t *testing.T) {
	encoded, wrapped, err := encodeWithTTL([]byte("payload"), time.Hour)
	if err != nil {
		t.Fatalf("encodeWithTTL: %v", err)
	}

	if !wrapped {
		t.Fatal("expected wrapping with positive ttl")
	}

	value, expired, wasWrapped, err := decodeWithTTL(encoded, time.Now())
	if err != nil {
		t.Fatalf("decodeWithTTL: %v", err)
	}

	if expired || !wasWrapped {
		t.Fatalf("decode: expired=%v wrapped=%v", expired, wasWrapped)
	}

	if string(value) != "payload" {
		t.Fatalf("decode value = %q, want %q", value, "payload")
	}
}

func TestNoTTLPassthrough(t *testing.T) {
	encoded, wrapped, err := encodeWithTTL([]byte("raw"), 0)
	if err != nil {
		t.Fatalf("encodeWithTTL: %v", err)
	}

	if wrapped {
		t.Fatal("zero ttl must not wrap")
	}

	value, expired, wasWrapped, err := decodeWithTTL(encoded, time.Now())
	if err != nil || expired || wasWrapped {
		t.Fatalf("decode raw: value=%q expired=%v wrapped=%v err=%v", value, expired, wasWrapped, err)
	}
}

func TestRegisteredTypes(t *testing.T) {
	types := GetRegisteredKVTypes()

	found := false

	for _, tp := range types {
		if tp == KVTypeMemory {
			found = true
		}
	}

	if !found {
		t.Fatal("memory KV factory not registered")
	}
}
