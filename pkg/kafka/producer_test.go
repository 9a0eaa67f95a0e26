package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adri-41/Recherche-Information/pkg/resilience"
)

type fakeWriter struct {
	calls    [][]kafka.Message
	err      error
	failures int
	attempts int
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("leader not available")
	}
	f.calls = append(f.calls, append([]kafka.Message(nil), msgs...))
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishBatchEncodesEvents(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "ranked-runs")
	err := p.PublishBatch(context.Background(), []Event{{Key: "2009011", Value: map[string]int{"rank": 1}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(w.calls) != 1 || len(w.calls[0]) != 1 {
		t.Fatalf("calls = %v", w.calls)
	}
	msg := w.calls[0][0]
	if string(msg.Key) != "2009011" || string(msg.Value) != `{"rank":1}` {
		t.Errorf("message = %s / %s", msg.Key, msg.Value)
	}
}

func TestPublishBatchChunks(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "ranked-runs")
	p.batchSize = 2
	events := make([]Event, 5)
	for i := range events {
		events[i] = Event{Key: "q", Value: i}
	}
	if err := p.PublishBatch(context.Background(), events); err != nil {
		t.Fatal(err)
	}
	if len(w.calls) != 3 {
		t.Fatalf("write calls = %d, want 3", len(w.calls))
	}
	if len(w.calls[2]) != 1 || string(w.calls[2][0].Value) != "4" {
		t.Errorf("last chunk = %v", w.calls[2])
	}
}

var fastRetry = resilience.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func TestPublishRetriesTransientFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newProducer(w, "ranked-runs")
	p.retry = fastRetry
	if err := p.PublishBatch(context.Background(), []Event{{Key: "q", Value: 1}}); err != nil {
		t.Fatal(err)
	}
	if w.attempts != 3 || len(w.calls) != 1 {
		t.Errorf("attempts = %d, successful writes = %d", w.attempts, len(w.calls))
	}
}

func TestPublishErrors(t *testing.T) {
	boom := errors.New("broker down")
	w := &fakeWriter{err: boom}
	p := newProducer(w, "ranked-runs")
	p.retry = fastRetry
	if err := p.PublishBatch(context.Background(), []Event{{Key: "k", Value: 1}}); !errors.Is(err, boom) {
		t.Errorf("PublishBatch err = %v", err)
	}
	if w.attempts != 3 {
		t.Errorf("attempts = %d, want 3", w.attempts)
	}
	if err := p.PublishBatch(context.Background(), []Event{{Key: "k", Value: func() {}}}); err == nil {
		t.Error("unserialisable value accepted")
	}
	if w.attempts != 3 {
		t.Error("unserialisable batch reached the writer")
	}
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	if err := newProducer(w, "t").Close(); err != nil || !w.closed {
		t.Errorf("closed = %v, err = %v", w.closed, err)
	}
}
