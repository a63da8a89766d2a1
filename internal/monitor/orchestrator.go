package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/alert"
	"github.com/openwatch/beacon/internal/domain"
	"github.com/openwatch/beacon/internal/notify"
	"github.com/openwatch/beacon/internal/probe"
	"github.com/openwatch/beacon/internal/repo"
)

// applyOutcome maps a probe outcome to the endpoint status it implies.
// A single check flips the status either way; suppression of repeat alerts
// is the gate's job, not this function's.
func applyOutcome(out probe.Outcome) domain.Status {
	if out.Healthy() {
		return domain.StatusUp
	}
	return domain.StatusDown
}

// Orchestrator is the per-endpoint unit of work: probe, persist the result,
// persist the implied status, and alert on failure through the gate.
type Orchestrator struct {
	Logger    *zap.Logger
	Clients   repo.ClientStore
	Endpoints repo.EndpointStore
	Results   repo.ResultStore
	Checker   probe.Checker
	Gate      *alert.Gate
	Notifier  notify.Notifier
	Timeout   time.Duration
}

func NewOrchestrator(
	logger *zap.Logger,
	clients repo.ClientStore,
	endpoints repo.EndpointStore,
	results repo.ResultStore,
	checker probe.Checker,
	gate *alert.Gate,
	notifier notify.Notifier,
	timeout time.Duration,
) *Orchestrator {
	if timeout <= 0 {
		timeout = probe.DefaultTimeout
	}
	return &Orchestrator{
		Logger:    logger,
		Clients:   clients,
		Endpoints: endpoints,
		Results:   results,
		Checker:   checker,
		Gate:      gate,
		Notifier:  notifier,
		Timeout:   timeout,
	}
}

// Run checks one endpoint. It never returns an error: every failure is
// logged here so one endpoint can never stop the rest of the batch. A
// persistence failure leaves this endpoint's cycle incomplete; the next
// cycle retries it.
func (o *Orchestrator) Run(ctx context.Context, ep domain.Endpoint) {
	cctx, cancel := context.WithTimeout(ctx, o.Timeout)
	out := o.Checker.Check(cctx, ep.URL)
	cancel()

	cr := &domain.CheckResult{
		EndpointID: ep.ID,
		StatusCode: out.StatusCode,
		LatencyMS:  out.LatencyMS,
		Healthy:    out.Healthy(),
		Error:      out.Err,
		CheckedAt:  time.Now().UTC(),
	}
	if err := o.Results.Append(ctx, cr); err != nil {
		o.Logger.Warn("result_append_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("url", ep.URL),
			zap.Error(err),
		)
		return
	}

	status := applyOutcome(out)
	if err := o.Endpoints.UpdateStatus(ctx, ep.ID, status); err != nil {
		o.Logger.Warn("status_update_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("url", ep.URL),
			zap.Error(err),
		)
		return
	}
	ep.Status = status

	if cr.Healthy {
		// No recovery notification: returning to healthy is deliberately quiet.
		o.Logger.Debug("endpoint_up",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("url", ep.URL),
		)
		return
	}

	o.Logger.Info("endpoint_down",
		zap.String("endpoint_id", string(ep.ID)),
		zap.String("url", ep.URL),
		zap.Intp("status_code", cr.StatusCode),
		zap.String("error", cr.Error),
	)
	o.alertDown(ctx, ep)
}

func (o *Orchestrator) alertDown(ctx context.Context, ep domain.Endpoint) {
	client, err := o.Clients.GetClient(ctx, ep.ClientID)
	if err != nil {
		o.Logger.Warn("alert_client_lookup_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.Error(err),
		)
		return
	}
	if client == nil || client.Email == "" {
		o.Logger.Warn("alert_no_recipient",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("client_id", string(ep.ClientID)),
		)
		return
	}

	if !o.Gate.TryAcquire(ep.ID, client.Email) {
		o.Logger.Debug("alert_suppressed",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("recipient", client.Email),
		)
		return
	}

	// The grant is already recorded: a failed send does not get a retry
	// within the window, so a flaky mail server cannot flood the client.
	if err := o.Notifier.Send(ctx, client.Email, ep); err != nil {
		o.Logger.Warn("alert_send_error",
			zap.String("endpoint_id", string(ep.ID)),
			zap.String("recipient", client.Email),
			zap.Error(err),
		)
		return
	}
	o.Logger.Info("alert_sent",
		zap.String("endpoint_id", string(ep.ID)),
		zap.String("recipient", client.Email),
	)
}
