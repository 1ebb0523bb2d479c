package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
	"github.com/courseops/scheduling-api/pkg/config"
	"github.com/courseops/scheduling-api/pkg/jobs"
)

type directoryReader interface {
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetInstructor(ctx context.Context, id string) (*models.Instructor, error)
}

type deliveryObserver interface {
	ObserveEventDelivery(outcome string)
}

// Dispatcher fans committed domain events out to the configured sinks via an
// in-memory worker queue. Failures are retried and logged; they never reach
// the transition that produced the event.
type Dispatcher struct {
	queue     *jobs.Queue
	sinks     []Notifier
	directory directoryReader
	observer  deliveryObserver
	logger    *zap.Logger
}

// NewDispatcher builds the dispatcher and its backing queue.
func NewDispatcher(cfg config.NotifierConfig, sinks []Notifier, directory directoryReader, observer deliveryObserver, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		sinks:     sinks,
		directory: directory,
		observer:  observer,
		logger:    logger,
	}
	d.queue = jobs.NewQueue("domain-events", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start begins event consumption.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Publish enqueues events for asynchronous delivery. Enqueue failures are
// logged and dropped: the transition has already committed and must not be
// affected.
func (d *Dispatcher) Publish(events ...models.Event) {
	for _, event := range events {
		job := jobs.Job{ID: event.ID, Type: string(event.Type), Payload: event}
		if err := d.queue.Enqueue(job); err != nil {
			d.logger.Error("failed to enqueue domain event",
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.Event)
	if !ok {
		d.logger.Error("unexpected event payload type", zap.String("job_id", job.ID))
		return nil
	}

	d.enrich(ctx, &event)

	var firstErr error
	for _, sink := range d.sinks {
		if err := sink.Notify(ctx, event); err != nil {
			if d.observer != nil {
				d.observer.ObserveEventDelivery("failure")
			}
			d.logger.Warn("event delivery failed",
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if d.observer != nil {
			d.observer.ObserveEventDelivery("success")
		}
	}
	return firstErr
}

// enrich attaches directory names for the event consumers. Best effort:
// lookup failures degrade the payload to bare IDs.
func (d *Dispatcher) enrich(ctx context.Context, event *models.Event) {
	if d.directory == nil {
		return
	}
	if org, err := d.directory.GetOrganization(ctx, event.Payload.Request.OrganizationID); err == nil {
		event.Payload.OrganizationName = org.Name
	}
	if event.Payload.Request.InstructorID != nil {
		if instructor, err := d.directory.GetInstructor(ctx, *event.Payload.Request.InstructorID); err == nil {
			event.Payload.InstructorName = instructor.FullName
		}
	}
}
