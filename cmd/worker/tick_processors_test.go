// path: cmd/worker/tick_processors_test.go
package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepProcessor_NameAndStop(t *testing.T) {
	proc := NewSweepProcessor(nil, testLogger{})
	assert.Equal(t, "SweepProcessor", proc.Name())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, proc.Stop(stopCtx))
}

func TestPeriodicProcessor_NameAndStop(t *testing.T) {
	proc := NewPeriodicProcessor(nil, testLogger{})
	assert.Equal(t, "PeriodicProcessor", proc.Name())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, proc.Stop(stopCtx))
}
