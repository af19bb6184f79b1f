package cache

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), &configs.KVConfig{})
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	return NewCache(store)
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	type pathEntry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	want := []pathEntry{{ID: "a", Name: "My Drive"}, {ID: "b", Name: "Docs"}}

	if err := Set(ctx, c, "path:x", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := Get[[]pathEntry](ctx, c, "path:x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(got) != 2 || got[1].Name != "Docs" {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
}

func TestGetOrSetComputesOnce(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	calls := 0
	getter := func() (int, error) {
		calls++
		return 42, nil
	}

	for range 3 {
		v, err := GetOrSet(ctx, c, "answer", getter, time.Minute)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}

		if v != 42 {
			t.Fatalf("GetOrSet = %d, want 42", v)
		}
	}

	if calls != 1 {
		t.Fatalf("getter called %d times, want 1", calls)
	}
}

func TestKeyStableAndDistinct(t *testing.T) {
	k1 := Key("path", "owner1", "folder1")
	k2 := Key("path", "owner1", "folder1")
	k3 := Key("path", "owner1", "folder2")

	if k1 != k2 {
		t.Fatalf("same parts produced different keys: %s vs %s", k1, k2)
	}

	if k1 == k3 {
		t.Fatal("different parts produced identical keys")
	}

	// 分隔符防止 ("ab","c") 与 ("a","bc") 冲突
	if Key("p", "ab", "c") == Key("p", "a", "bc") {
		t.Fatal("key parts must be separated before hashing")
	}
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_ = Set(ctx, c, "path:1", "a", 0)
	_ = Set(ctx, c, "path:2", "b", 0)
	_ = Set(ctx, c, "other:1", "c", 0)

	if err := c.DeletePrefix(ctx, "path"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}

	if _, err := Get[string](ctx, c, "path:1"); err == nil {
		t.Fatal("path:1 should be gone")
	}

	if v, err := Get[string](ctx, c, "other:1"); err != nil || v != "c" {
		t.Fatalf("other:1 = %q, %v; want untouched", v, err)
	}
}
