package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/docdrop/pkg/cache"
	"github.com/yeisme/docdrop/pkg/internal/storage/kv"
)

// testRecord 测试用的结构体.
type testRecord struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

func newTestCache() *cache.Cache {
	return cache.NewCache(kv.NewMemoryKV())
}

// TestCacheSetGet 测试缓存写入和读取.
func TestCacheSetGet(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	rec := testRecord{ID: 7, Name: "alice", Token: "tok_abc"}
	if err := cache.Set(ctx, c, "token:tok_abc", rec, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get[testRecord](ctx, c, "token:tok_abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != rec {
		t.Errorf("expected %+v, got %+v", rec, got)
	}
}

// TestCacheGetMiss 测试缓存未命中返回底层 not-found 错误.
func TestCacheGetMiss(t *testing.T) {
	c := newTestCache()

	_, err := cache.Get[testRecord](context.Background(), c, "token:none")
	if !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

// TestCacheDelete 测试删除后读取未命中.
func TestCacheDelete(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	_ = cache.Set(ctx, c, "k", testRecord{ID: 1}, 0)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get[testRecord](ctx, c, "k"); err == nil {
		t.Error("expected miss after Delete, got hit")
	}
}

// TestCacheGetOrSet 测试回源逻辑只在未命中时执行.
func TestCacheGetOrSet(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	calls := 0
	getter := func() (testRecord, error) {
		calls++
		return testRecord{ID: 42, Name: "bob"}, nil
	}

	// 第一次：未命中，回源
	got, err := cache.GetOrSet(ctx, c, "k", getter, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}

	if got.ID != 42 || calls != 1 {
		t.Errorf("expected getter called once, got calls=%d value=%+v", calls, got)
	}

	// 第二次：命中，不回源
	got, err = cache.GetOrSet(ctx, c, "k", getter, time.Minute)
	if err != nil {
		t.Fatalf("GetOrSet (hit) failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("getter should not run on hit, calls=%d", calls)
	}

	if got.Name != "bob" {
		t.Errorf("unexpected cached value: %+v", got)
	}
}

// TestCacheGetOrSetGetterError 测试 getter 出错时错误向上传递且不写缓存.
func TestCacheGetOrSetGetterError(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	wantErr := errors.New("boom")

	_, err := cache.GetOrSet(ctx, c, "k", func() (testRecord, error) {
		return testRecord{}, wantErr
	}, 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected getter error, got %v", err)
	}

	exists, _ := c.Exists(ctx, "k")
	if exists {
		t.Error("cache should not be populated when getter fails")
	}
}
