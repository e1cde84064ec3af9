package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/rosso/internal/telemetry/logger"
)

func recordingHooks(h *Handler, n int) (*[]int, *sync.Mutex) {
	order := make([]int, 0, n)
	var mu sync.Mutex
	for i := 1; i <= n; i++ {
		i := i
		h.OnShutdown("hook", func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}
	return &order, &mu
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5*time.Second, logger.Discard())

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Shutdown")
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5*time.Second, logger.Discard())
	order, mu := recordingHooks(h, 3)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Wait(context.Background())
	}()

	// Give Wait time to set up signal handler
	time.Sleep(50 * time.Millisecond)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*order) != 3 || (*order)[0] != 3 || (*order)[1] != 2 || (*order)[2] != 1 {
		t.Errorf("hooks called in order %v, want [3 2 1]", *order)
	}
}

func TestHandler_Wait_ContextCancel(t *testing.T) {
	h := NewHandler(5*time.Second, logger.Discard())
	order, mu := recordingHooks(h, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*order) != 2 {
		t.Errorf("hooks called = %d, want 2", len(*order))
	}
}

func TestHandler_Shutdown_HookErrors(t *testing.T) {
	h := NewHandler(5*time.Second, logger.Discard())

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	called := 0

	h.OnShutdown("a", func(ctx context.Context) error { called++; return errA })
	h.OnShutdown("ok", func(ctx context.Context) error { called++; return nil })
	h.OnShutdown("b", func(ctx context.Context) error { called++; return errB })

	err := h.Shutdown()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Shutdown() error = %v, want both hook errors", err)
	}
	if called != 3 {
		t.Errorf("hooks called = %d, want 3 (a failing hook must not stop the rest)", called)
	}
}

func TestHandler_Shutdown_RunsOnce(t *testing.T) {
	h := NewHandler(5*time.Second, logger.Discard())
	order, mu := recordingHooks(h, 1)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Shutdown()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(*order) != 1 {
		t.Errorf("hook ran %d times, want 1", len(*order))
	}
}

func TestHandler_Shutdown_Timeout(t *testing.T) {
	h := NewHandler(20*time.Millisecond, logger.Discard())
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Shutdown(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want context.DeadlineExceeded", err)
	}
}
