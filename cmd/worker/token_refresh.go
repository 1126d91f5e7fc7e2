// path: cmd/worker/token_refresh.go
// Consumer for the tokenRefresh queue (spec §4.J): unmarshals each job's
// RefreshPayload and hands it to the token lifecycle handler.
package main

import (
	"context"
	"encoding/json"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/tokenlifecycle"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
)

func NewTokenRefreshProcessor(lifecycle *tokenlifecycle.Lifecycle, queue *jobqueue.Queue, logger common.Logger) *QueueProcessor {
	return NewQueueProcessor("TokenRefreshProcessor", jobqueue.QueueTokenRefresh, queue, logger, func(ctx context.Context, payload json.RawMessage) error {
		var p tokenlifecycle.RefreshPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return lifecycle.Refresh(ctx, p)
	})
}
