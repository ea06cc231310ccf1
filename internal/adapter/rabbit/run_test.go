package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
)

type fakeChannel struct {
	fails    int
	calls    int
	exchange string
	key      string
	msg      amqp091.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("channel closed")
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestPublishRunCompleted(t *testing.T) {
	ch := &fakeChannel{fails: 1}
	p := &RunPublisher{ch: ch, exchange: "ingestion"}

	run := models.RunCompleted{RunID: "run-1", Mode: "lake", Summary: models.Summary{Total: 6, Done: 5, Skipped: 1}}
	if err := p.PublishRunCompleted(context.Background(), run); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if ch.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", ch.calls)
	}
	if ch.exchange != "ingestion" || ch.key != "run.lake.completed" {
		t.Fatalf("unexpected destination %s/%s", ch.exchange, ch.key)
	}

	var got models.RunCompleted
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.RunID != "run-1" || got.Summary.Skipped != 1 || ch.msg.MessageId != "run-1" {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestPublishRunCompleted_GivesUp(t *testing.T) {
	ch := &fakeChannel{fails: 10}
	p := &RunPublisher{ch: ch, exchange: "ingestion"}

	if err := p.PublishRunCompleted(context.Background(), models.RunCompleted{Mode: "trips"}); err == nil {
		t.Fatalf("expected error")
	}
	if ch.calls != publishAttempts {
		t.Fatalf("expected %d calls, got %d", publishAttempts, ch.calls)
	}
}
