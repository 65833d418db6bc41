package parallel

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestStart_Workers(t *testing.T) {
	if got := Start(3).Workers(); got != 3 {
		t.Errorf("Workers: got %d, want 3", got)
	}
	if got, want := Start(0).Workers(), runtime.GOMAXPROCS(0); got != want {
		t.Errorf("Workers for 0: got %d, want %d", got, want)
	}
}

func TestSingleWorkerRunsInline(t *testing.T) {
	pool := Start(1)
	defer pool.Close()

	ran := false
	if err := pool.Do(func() { ran = true }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Error("job did not run before Do returned")
	}
}

func TestMultipleWorkers(t *testing.T) {
	pool := Start(4)

	var count atomic.Int64
	for range 100 {
		if err := pool.Do(func() { count.Add(1) }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	pool.Close()

	if got := count.Load(); got != 100 {
		t.Errorf("jobs run: got %d, want 100", got)
	}
}

func TestDoAfterClose(t *testing.T) {
	for _, n := range []int{1, 2} {
		pool := Start(n)
		pool.Close()
		pool.Close()

		if err := pool.Do(func() {}); !errors.Is(err, ErrClosed) {
			t.Errorf("workers=%d: got %v, want ErrClosed", n, err)
		}
	}
}
