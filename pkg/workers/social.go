package workers

import (
	"context"

	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/universe"
)

// handleRunGossipDispatch implements the worker side of §4.6: fan evt out
// to every other bot whose relationship with the user clears the trust
// threshold. universe.Bus.Publish already ran the publication gate before
// this job was ever enqueued, so dispatch only resolves recipients and
// writes.
func (wk *Workers) handleRunGossipDispatch(ctx context.Context, job *taskqueue.Job) error {
	var evt universe.Event
	if err := decode(job.Payload, &evt); err != nil {
		return err
	}
	if wk.Directory == nil {
		return nil
	}
	return universe.Dispatch(ctx, evt, wk.Directory)
}
