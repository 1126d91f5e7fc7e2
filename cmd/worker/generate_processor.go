// path: cmd/worker/generate_processor.go
// Consumer for the generate queue (spec §4.G): unmarshals each job's
// GeneratePayload and hands it to the content pipeline.
package main

import (
	"context"
	"encoding/json"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
)

func NewGenerateProcessor(generator *pipeline.Generator, queue *jobqueue.Queue, logger common.Logger) *QueueProcessor {
	return NewQueueProcessor("GenerateProcessor", jobqueue.QueueGenerate, queue, logger, func(ctx context.Context, payload json.RawMessage) error {
		var p pipeline.GeneratePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return generator.Generate(ctx, p)
	})
}
