// path: cmd/worker/publish_post.go
// Consumer for the publish queue (spec §4.I): unmarshals each job's
// PublishPayload and hands it to the Publisher.
package main

import (
	"context"
	"encoding/json"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
)

func NewPublishProcessor(publisher *publish.Publisher, queue *jobqueue.Queue, logger common.Logger) *QueueProcessor {
	return NewQueueProcessor("PublishProcessor", jobqueue.QueuePublish, queue, logger, func(ctx context.Context, payload json.RawMessage) error {
		var p publish.PublishPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return publisher.Publish(ctx, p)
	})
}
