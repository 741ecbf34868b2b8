package analytics_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/junekp/photoroll/internal/analytics"
)

// syncBuffer guards the log output against the delivery goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogSinkDeliversEvents(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	sink := analytics.NewLogSink(logger, 16)

	sink.Emit("filter_applied", map[string]string{"kind": "preset"})
	sink.Emit("page_loaded", nil)
	sink.Close()

	logged := out.String()
	if !strings.Contains(logged, "filter_applied") {
		t.Errorf("missing filter_applied event in output:\n%s", logged)
	}
	if !strings.Contains(logged, "kind=preset") {
		t.Errorf("missing event property in output:\n%s", logged)
	}
	if !strings.Contains(logged, "page_loaded") {
		t.Errorf("missing page_loaded event in output:\n%s", logged)
	}
	if got := strings.Count(logged, "analytics event"); got != 2 {
		t.Errorf("delivered %d events, want 2", got)
	}
}

func TestLogSinkDropsOnOverflow(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	sink := analytics.NewLogSink(logger, 1)
	for i := 0; i < 100; i++ {
		sink.Emit("burst", nil)
	}
	sink.Close()

	if got := strings.Count(out.String(), "analytics event"); got < 1 || got > 100 {
		t.Fatalf("delivered %d events, want between 1 and 100", got)
	}
}

func TestLogSinkCloseIsIdempotent(t *testing.T) {
	sink := analytics.NewLogSink(slog.New(slog.DiscardHandler), 4)
	sink.Emit("once", nil)
	sink.Close()
	sink.Close()
}

func TestLogSinkEmitDuringCloseDoesNotPanic(t *testing.T) {
	sink := analytics.NewLogSink(slog.New(slog.DiscardHandler), 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				sink.Emit("race", nil)
			}
		}()
	}

	sink.Close()
	wg.Wait()

	// Emitting after shutdown is a silent no-op.
	sink.Emit("late", nil)
}
