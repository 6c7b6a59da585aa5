package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"resume-matcher/internal/runlog"
)

const (
	TypeAnalysisCompleted = "analysis.completed"
	TypeAnalysisFailed    = "analysis.failed"

	DefaultExchange = "analysis_events"
)

// Event is the message published after every analysis attempt.
type Event struct {
	Type        string     `json:"type"`
	Run         runlog.Run `json:"run"`
	PublishedAt time.Time  `json:"publishedAt"`
}

// Publisher delivers analysis events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, ev Event) error { return ctx.Err() }
func (NoopPublisher) Close() error                                { return nil }

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON events to a topic exchange, routed by event type.
type AMQPPublisher struct {
	exchange string
	conn     *amqp.Connection

	mu      sync.Mutex
	open    func() (channel, error)
	current channel
	now     func() time.Time
}

// DialAMQP connects to the broker and declares the durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("AMQP_URL is empty")
	}
	if strings.TrimSpace(exchange) == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp declare exchange %s: %w", exchange, err)
	}
	p := &AMQPPublisher{
		exchange: exchange,
		conn:     conn,
		current:  ch,
		now:      time.Now,
	}
	p.open = func() (channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
	return p, nil
}

// Publish sends the event. A failed channel is dropped and reopened on the next call.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.PublishedAt.IsZero() {
		ev.PublishedAt = p.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		ch, err := p.open()
		if err != nil {
			return fmt.Errorf("amqp channel: %w", err)
		}
		p.current = ch
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.Run.ID,
		Timestamp:    ev.PublishedAt,
		Body:         body,
	}
	if err := p.current.Publish(p.exchange, ev.Type, false, false, msg); err != nil {
		_ = p.current.Close()
		p.current = nil
		return fmt.Errorf("amqp publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		_ = p.current.Close()
		p.current = nil
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// TypeFor maps a run status to its event type.
func TypeFor(run runlog.Run) string {
	if run.Status == runlog.StatusCompleted {
		return TypeAnalysisCompleted
	}
	return TypeAnalysisFailed
}
