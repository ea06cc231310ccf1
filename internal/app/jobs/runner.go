// Package jobs wires clients, adapters and services for each job mode.
package jobs

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Temutjin2k/taxi-ingest/config"
	"github.com/Temutjin2k/taxi-ingest/internal/adapter/http/handler"
	"github.com/Temutjin2k/taxi-ingest/internal/adapter/http/server"
	rabbitadapter "github.com/Temutjin2k/taxi-ingest/internal/adapter/rabbit"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/internal/service/report"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
	"github.com/Temutjin2k/taxi-ingest/pkg/metrics"
	"github.com/Temutjin2k/taxi-ingest/pkg/rabbit"
)

const (
	serviceName    = "taxi-ingest"
	publishTimeout = 10 * time.Second
)

// work is the body of a job. Item-level problems go to the aggregator, the
// returned error is reserved for failures that end the run.
type work func(ctx context.Context, agg *report.Aggregator) error

// Publisher announces finished runs.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, msg models.RunCompleted) error
}

// runner holds what every job shares: the optional metrics endpoint, the
// optional run notification and the clients to close at the end.
type runner struct {
	mode types.JobMode
	cfg  config.Config
	log  logger.Logger

	httpServer *server.API
	rabbit     *rabbit.RabbitMQ
	publisher  Publisher
	closers    []func(ctx context.Context)
}

func newRunner(ctx context.Context, cfg config.Config, log logger.Logger) (*runner, error) {
	r := &runner{
		mode: cfg.Mode,
		cfg:  cfg,
		log:  log,
	}

	if cfg.Metrics.Enabled {
		health := handler.NewHealth(serviceName, cfg.Mode.String(), cfg.RunID, log)
		r.httpServer = server.New(cfg.Metrics.Port, health, log)
	}

	if cfg.RabbitMQ.Enabled {
		client, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Error(ctx, "failed to connect to rabbitmq", err)
			return nil, err
		}
		r.rabbit = client
		r.publisher = rabbitadapter.NewRunPublisher(client, cfg.RabbitMQ.Exchange)
	}

	return r, nil
}

// onClose registers fn to run when the job ends, in reverse order.
func (r *runner) onClose(fn func(ctx context.Context)) {
	r.closers = append(r.closers, fn)
}

func (r *runner) run(ctx context.Context, body work) (err error) {
	ctx = wrap.WithRunID(ctx, r.cfg.RunID)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.httpServer != nil {
		errCh := make(chan error, 1)
		r.httpServer.Run(ctx, errCh)
		go func() {
			select {
			case errRun := <-errCh:
				r.log.Warn(ctx, "metrics endpoint unavailable", "error", errRun.Error())
			case <-ctx.Done():
			}
		}()
	}
	defer r.close(ctx)

	startedAt := time.Now()
	agg := report.NewAggregator()
	r.log.Info(wrap.WithAction(ctx, types.ActionJobStart), "job started", "mode", r.mode)

	err = body(ctx, agg)

	finishedAt := time.Now()
	summary := agg.Log(wrap.WithAction(ctx, types.ActionJobFinished), r.log)
	metrics.RecordJob(r.mode.String(), err, finishedAt.Sub(startedAt))

	if err != nil {
		r.log.Error(wrap.ErrorCtx(ctx, err), "job failed", err, "duration", finishedAt.Sub(startedAt).String())
	} else {
		r.log.Info(wrap.WithAction(ctx, types.ActionJobFinished), "job finished", "duration", finishedAt.Sub(startedAt).String())
	}

	r.publish(ctx, models.RunCompleted{
		RunID:      r.cfg.RunID,
		Mode:       r.mode.String(),
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		Error:      errString(err),
		Summary:    summary,
	})

	return err
}

func (r *runner) publish(ctx context.Context, msg models.RunCompleted) {
	if r.publisher == nil {
		return
	}
	if r.rabbit != nil && r.rabbit.IsConnectionClosed() {
		r.log.Warn(ctx, "rabbitmq connection closed, run summary not published")
		return
	}

	// the run context may already be cancelled by a signal
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := r.publisher.PublishRunCompleted(ctx, msg); err != nil {
		r.log.Warn(ctx, "failed to publish run summary", "error", err.Error())
	}
}

func (r *runner) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i](ctx)
	}

	if r.httpServer != nil {
		if err := r.httpServer.Stop(ctx); err != nil {
			r.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if r.rabbit != nil {
		if err := r.rabbit.Close(ctx); err != nil {
			r.log.Warn(ctx, "Failed to close rabbitmq", "error", err.Error())
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
