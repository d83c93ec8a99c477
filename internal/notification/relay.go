package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/maganghub/maganghub-api/internal/models"
	"github.com/maganghub/maganghub-api/pkg/jobs"
)

type relayMetrics interface {
	RecordEventPublished()
	RecordEventDeduplicated()
}

// delivery is one enqueued fan-out.
type delivery struct {
	userIDs []string
	event   models.Event
}

// Relay is the publish side the workflow services talk to. Publishes are
// handed to a worker pool so the dedup round-trip and the hub's session locks
// stay off the request path; when the pool is saturated the relay falls back
// to delivering inline. A relay failure never propagates: the workflow
// decision has already been persisted by the time an event is pushed.
type Relay struct {
	hub     *Hub
	deduper *Deduper
	metrics relayMetrics
	logger  *zap.Logger
	pool    *jobs.Pool
	enabled bool
}

// NewRelay constructs the relay. Start must be called before events flow.
func NewRelay(hub *Hub, deduper *Deduper, metrics relayMetrics, logger *zap.Logger, enabled bool) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{hub: hub, deduper: deduper, metrics: metrics, logger: logger, enabled: enabled}
	r.pool = jobs.NewPool("notifications", 2, 256, r.handle, logger)
	return r
}

// Start launches the dispatch workers.
func (r *Relay) Start(ctx context.Context) {
	r.pool.Start(ctx)
}

// Close stops the dispatch workers.
func (r *Relay) Close() {
	r.pool.Stop()
}

// Publish delivers the event to every listed user's sessions.
func (r *Relay) Publish(ctx context.Context, userIDs []string, event models.Event) {
	if !r.enabled || r.hub == nil || len(userIDs) == 0 {
		return
	}

	task := jobs.Task{Kind: string(event.Type), Payload: delivery{userIDs: userIDs, event: event}}
	if err := r.pool.Enqueue(task); err != nil {
		r.logger.Warn("dispatch pool rejected event, delivering inline", zap.Error(err))
		r.deliver(ctx, delivery{userIDs: userIDs, event: event})
	}
}

func (r *Relay) handle(ctx context.Context, task jobs.Task) error {
	d, ok := task.Payload.(delivery)
	if !ok {
		r.logger.Error("unexpected payload type on notification pool", zap.String("kind", task.Kind))
		return nil
	}
	r.deliver(ctx, d)
	return nil
}

// deliver runs dedup and fan-out. Duplicate content within the dedup window
// is suppressed once globally, not per user: the key identifies the logical
// event, which is shared across recipients.
func (r *Relay) deliver(ctx context.Context, d delivery) {
	if r.deduper != nil && !r.deduper.Claim(ctx, d.event.DedupKey()) {
		if r.metrics != nil {
			r.metrics.RecordEventDeduplicated()
		}
		r.logger.Debug("duplicate event suppressed",
			zap.String("type", string(d.event.Type)),
			zap.String("key", d.event.DedupKey()))
		return
	}

	delivered := 0
	for _, userID := range d.userIDs {
		delivered += r.hub.SendEvent(userID, d.event)
	}
	if r.metrics != nil {
		r.metrics.RecordEventPublished()
	}
	r.logger.Info("event published",
		zap.String("type", string(d.event.Type)),
		zap.Int("recipients", len(d.userIDs)),
		zap.Int("sessions", delivered))
}
