package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestMemoryKVSetGet 测试基本的写入和读取.
func TestMemoryKVSetGet(t *testing.T) {
	m := NewMemoryKV()
	ctx := context.Background()

	if err := m.Set(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(got) != "v1" {
		t.Errorf("expected v1, got %s", got)
	}
}

// TestMemoryKVGetMissing 测试不存在的键返回 ErrKeyNotFound.
func TestMemoryKVGetMissing(t *testing.T) {
	m := NewMemoryKV()

	_, err := m.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

// TestMemoryKVValueCopy 测试 Get 返回的是副本，修改不影响存储.
func TestMemoryKVValueCopy(t *testing.T) {
	m := NewMemoryKV()
	ctx := context.Background()

	src := []byte("origin")
	if err := m.Set(ctx, "k", src, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 修改原始切片不应影响已存储的值
	src[0] = 'X'

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(got) != "origin" {
		t.Errorf("stored value mutated: %s", got)
	}

	// 修改返回值不应影响下一次读取
	got[0] = 'Y'

	again, _ := m.Get(ctx, "k")
	if string(again) != "origin" {
		t.Errorf("returned slice aliases storage: %s", again)
	}
}

// TestMemoryKVDeleteExists 测试删除和存在性检查.
func TestMemoryKVDeleteExists(t *testing.T) {
	m := NewMemoryKV()
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("v"), 0)

	exists, err := m.Exists(ctx, "k")
	if err != nil || !exists {
		t.Fatalf("expected key to exist, exists=%v err=%v", exists, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, _ = m.Exists(ctx, "k")
	if exists {
		t.Error("expected key to be gone after Delete")
	}
}

// TestMemoryKVConcurrent 测试并发读写安全.
func TestMemoryKVConcurrent(t *testing.T) {
	m := NewMemoryKV()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			key := "k" + string(rune('a'+n%26))
			_ = m.Set(ctx, key, []byte{byte(n)}, 0)
			_, _ = m.Get(ctx, key)
		}(i)
	}

	wg.Wait()
}
