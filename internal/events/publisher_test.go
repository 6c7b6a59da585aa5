package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"

	"resume-matcher/internal/runlog"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	fail   error
	closed bool
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestPublisher(channels ...*fakeChannel) *AMQPPublisher {
	idx := 0
	fixed := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &AMQPPublisher{
		exchange: DefaultExchange,
		now:      func() time.Time { return fixed },
		open: func() (channel, error) {
			if idx >= len(channels) {
				return nil, errors.New("no channel")
			}
			ch := channels[idx]
			idx++
			return ch, nil
		},
	}
}

func TestPublishRoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := newTestPublisher(ch)
	run := runlog.Run{ID: "run-1", Status: runlog.StatusCompleted, MatchPercentage: 50}

	if err := p.Publish(context.Background(), Event{Type: TypeFor(run), Run: run}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(ch.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.sent))
	}
	got := ch.sent[0]
	if got.exchange != DefaultExchange || got.key != TypeAnalysisCompleted {
		t.Fatalf("unexpected routing %s/%s", got.exchange, got.key)
	}
	if got.msg.MessageId != "run-1" || got.msg.ContentType != "application/json" {
		t.Fatalf("unexpected message headers: %+v", got.msg)
	}
	var ev Event
	if err := json.Unmarshal(got.msg.Body, &ev); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if ev.Run.MatchPercentage != 50 || ev.PublishedAt.IsZero() {
		t.Fatalf("unexpected event body: %+v", ev)
	}
}

func TestPublishReopensChannelAfterFailure(t *testing.T) {
	broken := &fakeChannel{fail: errors.New("channel closed")}
	healthy := &fakeChannel{}
	p := newTestPublisher(broken, healthy)
	ev := Event{Type: TypeAnalysisFailed, Run: runlog.Run{ID: "run-2", Status: runlog.StatusFailed}}

	if err := p.Publish(context.Background(), ev); err == nil {
		t.Fatal("expected first publish to fail")
	}
	if !broken.closed {
		t.Fatal("expected failed channel to be closed")
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("expected second publish to succeed: %v", err)
	}
	if len(healthy.sent) != 1 || healthy.sent[0].key != TypeAnalysisFailed {
		t.Fatalf("unexpected sent messages: %+v", healthy.sent)
	}
}

func TestTypeFor(t *testing.T) {
	if TypeFor(runlog.Run{Status: runlog.StatusFailed}) != TypeAnalysisFailed {
		t.Fatal("failed run should map to analysis.failed")
	}
	if TypeFor(runlog.Run{Status: runlog.StatusCompleted}) != TypeAnalysisCompleted {
		t.Fatal("completed run should map to analysis.completed")
	}
}
