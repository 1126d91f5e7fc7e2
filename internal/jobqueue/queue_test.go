// path: internal/jobqueue/queue_test.go
package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffFor_FollowsDefaultSchedule(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffFor(1))
	assert.Equal(t, 10*time.Second, backoffFor(2))
	assert.Equal(t, 60*time.Second, backoffFor(3))
}

func TestBackoffFor_ClampsBeyondScheduleLength(t *testing.T) {
	assert.Equal(t, 60*time.Second, backoffFor(10))
}

func TestBackoffFor_ClampsBelowOne(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffFor(0))
}

func TestKeyHelpers_Namespace(t *testing.T) {
	assert.Equal(t, "jobqueue:ready:generate", readyKey(QueueGenerate))
	assert.Equal(t, "jobqueue:processing:publish", processingKey(QueuePublish))
	assert.Equal(t, "jobqueue:dlq:tokenRefresh", dlqKey(QueueTokenRefresh))
}
