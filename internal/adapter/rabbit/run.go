package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/rabbit"
)

const (
	publishAttempts = 3
	publishDelay    = 500 * time.Millisecond
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// RunPublisher announces finished ingestion runs.
type RunPublisher struct {
	ch       publisher
	exchange string
}

func NewRunPublisher(client *rabbit.RabbitMQ, exchange string) *RunPublisher {
	return &RunPublisher{
		ch:       client.Channel,
		exchange: exchange,
	}
}

// PublishRunCompleted publishes the run summary under run.<mode>.completed.
func (p *RunPublisher) PublishRunCompleted(ctx context.Context, msg models.RunCompleted) error {
	const op = "RunPublisher.PublishRunCompleted"
	ctx = wrap.WithAction(ctx, types.ActionRabbitPublish)

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := RoutingKey(msg.Mode)
	publish := func() error {
		return p.ch.PublishWithContext(
			ctx,
			p.exchange, // exchange
			key,        // routing key
			false,      // mandatory
			false,      // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				MessageId:    msg.RunID,
				Body:         body,
				Timestamp:    time.Now(),
			},
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(publishDelay), publishAttempts-1), ctx)
	if err := backoff.Retry(publish, b); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}

	return nil
}

func RoutingKey(mode string) string {
	return fmt.Sprintf("run.%s.completed", mode)
}
