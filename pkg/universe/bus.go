package universe

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/whisperengine/core/pkg/taskqueue"
)

// blockedEvents counts publish attempts rejected before dispatch, labeled
// by reason, mirroring §8's "universe_event_blocked{reason=...}" metric.
var blockedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "universe_event_blocked_total",
	Help: "Universe events rejected before gossip dispatch, by reason.",
}, []string{"reason"})

func init() {
	prometheus.MustRegister(blockedEvents)
}

// OptOutChecker reports whether a user has opted out of universe event
// publication.
type OptOutChecker interface {
	IsOptedOut(ctx context.Context, userID string) (bool, error)
}

// Bus is the publication-side gate: every check in §4.6 step 3 runs here
// before an event reaches the worker-side dispatcher.
type Bus struct {
	enabled bool
	queue   *taskqueue.Queue
	optOut  OptOutChecker
}

// NewBus builds a Bus. enabled mirrors ENABLE_UNIVERSE_EVENTS.
func NewBus(enabled bool, queue *taskqueue.Queue, optOut OptOutChecker) *Bus {
	return &Bus{enabled: enabled, queue: queue, optOut: optOut}
}

// Publish runs the publication gate on evt and, if every check passes,
// enqueues run_gossip_dispatch. It never returns an error for a event
// that was correctly dropped — dropping is the expected outcome of a
// gate check, not a failure (§8: "silently drop with metric").
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if !b.enabled {
		blockedEvents.WithLabelValues("disabled").Inc()
		return nil
	}
	if evt.PropagationDepth > maxPropagationDepth {
		blockedEvents.WithLabelValues("propagation_depth").Inc()
		return nil
	}
	if IsSensitive(evt.Topic, evt.Summary) {
		blockedEvents.WithLabelValues("sensitive_topic").Inc()
		return nil
	}
	if b.optOut != nil {
		optedOut, err := b.optOut.IsOptedOut(ctx, evt.UserID)
		if err != nil {
			return err
		}
		if optedOut {
			blockedEvents.WithLabelValues("opted_out").Inc()
			return nil
		}
	}

	jobID := "gossip_" + evt.UserID + "_" + evt.SourceBot + "_" + string(evt.EventType)
	_, err := b.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskRunGossipDispatch), taskqueue.TaskRunGossipDispatch, taskqueue.EnqueueOptions{
		JobID:   jobID,
		BotName: evt.SourceBot,
		Payload: evt,
	})
	return err
}
