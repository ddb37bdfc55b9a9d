package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func sampleEvent() Event {
	return Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Channel:      "ticker",
		Message: &MessageEvent{
			Event:   "price-update",
			ID:      "7",
			Payload: `{"bid":100}`,
		},
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	want := sampleEvent()

	data, err := EncodeEvent(want)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	if got.ConnectionID != want.ConnectionID {
		t.Errorf("ConnectionID = %q, want %q", got.ConnectionID, want.ConnectionID)
	}
	if got.Channel != want.Channel {
		t.Errorf("Channel = %q, want %q", got.Channel, want.Channel)
	}
	if got.Message == nil || got.Message.Event != "price-update" {
		t.Errorf("Message = %+v, want price-update", got.Message)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Log(sampleEvent())

	out := sampleEvent()
	out.Direction = DirectionOut
	out.Channel = "orders"
	logger.Log(out)

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Log after close is ignored
	logger.Log(sampleEvent())

	reader, err := NewReader(path, nil)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[1].Channel != "orders" {
		t.Errorf("events[1].Channel = %q, want %q", events[1].Channel, "orders")
	}
}

func TestReaderFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		logger.Log(sampleEvent())
	}
	out := sampleEvent()
	out.Direction = DirectionOut
	logger.Log(out)
	logger.Close()

	dir := DirectionOut
	reader, err := NewReader(path, &Filter{Direction: &dir})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("len(events) = %d, want 1", len(events))
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				logger.Log(sampleEvent())
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path, nil)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 400 {
		t.Errorf("len(events) = %d, want 400", len(events))
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	adapter.Log(sampleEvent())

	got := buf.String()
	for _, want := range []string{"conn-1", "IN", "WIRE", "price-update", "ticker"} {
		if !strings.Contains(got, want) {
			t.Errorf("slog output missing %q: %s", want, got)
		}
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b recordingLogger
	multi := NewMultiLogger(&a, &b)

	multi.Log(sampleEvent())

	if a.count != 1 || b.count != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", a.count, b.count)
	}
}

func TestTruncatePayload(t *testing.T) {
	short, truncated := TruncatePayload("small")
	if short != "small" || truncated {
		t.Errorf("TruncatePayload(small) = (%q, %v), want unmodified", short, truncated)
	}

	big := strings.Repeat("x", MaxLoggedPayloadSize+100)
	clipped, truncated := TruncatePayload(big)
	if len(clipped) != MaxLoggedPayloadSize || !truncated {
		t.Errorf("TruncatePayload(big) = (%d bytes, %v), want (%d, true)",
			len(clipped), truncated, MaxLoggedPayloadSize)
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	count int
}

func (r *recordingLogger) Log(Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}
