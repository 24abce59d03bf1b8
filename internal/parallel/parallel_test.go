package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRange(t *testing.T) {
	const n = 1000
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

	var visited [n]atomic.Int32
	For(cfg, n, func(start, end int) {
		for i := start; i < end; i++ {
			visited[i].Add(1)
		}
	})

	for i := range visited {
		if got := visited[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestForSerialWhenDisabled(t *testing.T) {
	cfg := Config{Enabled: false}

	calls := 0
	For(cfg, 100, func(start, end int) {
		calls++
		if start != 0 || end != 100 {
			t.Errorf("serial run got range [%d, %d), want [0, 100)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("serial run made %d calls, want 1", calls)
	}
}

func TestForSmallRangeStaysSerial(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}

	calls := 0
	For(cfg, 10, func(start, end int) {
		calls++
	})
	if calls != 1 {
		t.Errorf("tiny range made %d calls, want 1", calls)
	}
}

func TestForEmptyRange(t *testing.T) {
	For(DefaultConfig(), 0, func(start, end int) {
		t.Error("fn called for empty range")
	})
}

func TestForBatch(t *testing.T) {
	const n = 37
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	var sum atomic.Int64
	ForBatch(cfg, n, func(i int) {
		sum.Add(int64(i))
	})

	want := int64(n * (n - 1) / 2)
	if sum.Load() != want {
		t.Errorf("sum = %d, want %d", sum.Load(), want)
	}
}
