package handler

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	mode        string
	runID       string
	startedAt   time.Time
	log         logger.Logger
}

func NewHealth(serviceName, mode, runID string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		mode:        mode,
		runID:       runID,
		startedAt:   time.Now(),
		log:         log,
	}
}

// HealthCheck reports that the run is alive and which job it is executing.
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": a.serviceName,
			"mode":         a.mode,
			"run_id":       a.runID,
			"uptime":       time.Since(a.startedAt).Round(time.Second).String(),
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
