// path: internal/handlers/scheduler_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
)

type fakeConfigRepo struct {
	config *scheduling.Config
}

func (f *fakeConfigRepo) Get(ctx context.Context) (*scheduling.Config, error) { return f.config, nil }
func (f *fakeConfigRepo) Save(ctx context.Context, c *scheduling.Config) error {
	f.config = c
	return nil
}

type fakeAutoScheduleRepo struct {
	recent []*scheduling.AutoSchedule
}

func (f *fakeAutoScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.AutoSchedule, error) {
	return nil, nil
}
func (f *fakeAutoScheduleRepo) FindByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	return nil, nil
}
func (f *fakeAutoScheduleRepo) FindNonTerminalByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	return nil, nil
}
func (f *fakeAutoScheduleRepo) Create(ctx context.Context, s *scheduling.AutoSchedule) error {
	f.recent = append(f.recent, s)
	return nil
}
func (f *fakeAutoScheduleRepo) Update(ctx context.Context, s *scheduling.AutoSchedule) error {
	return nil
}
func (f *fakeAutoScheduleRepo) ListRecent(ctx context.Context, limit int) ([]*scheduling.AutoSchedule, error) {
	return f.recent, nil
}

func TestSchedulerHandler_GetConfig(t *testing.T) {
	configRepo := &fakeConfigRepo{config: scheduling.NewConfig(0.4, 5, 3)}
	h := NewSchedulerHandler(configRepo, &fakeAutoScheduleRepo{}, nil, testLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/scheduler-config", nil)
	rec := httptest.NewRecorder()
	h.GetConfig(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSchedulerHandler_UpdateConfig_AppliesFields(t *testing.T) {
	configRepo := &fakeConfigRepo{config: scheduling.NewConfig(0.4, 5, 3)}
	h := NewSchedulerHandler(configRepo, &fakeAutoScheduleRepo{}, nil, testLogger{})

	body, _ := json.Marshal(schedulerConfigDTO{
		ExplorationFactor:    0.9,
		MinTrialsPerTemplate: 10,
		PostsPerDay:          5,
		TimeRangeStart:       8,
		TimeRangeEnd:         20,
		ActiveDays:           []int{1, 2, 3, 4, 5},
		AutoScheduleEnabled:  true,
		AIEngine:             "primary",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/scheduler-config", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.UpdateConfig(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.9, configRepo.config.ExplorationFactor)
	assert.Equal(t, 5, configRepo.config.PostsPerDay)
}

func TestSchedulerHandler_UpdateConfig_InvalidBody(t *testing.T) {
	configRepo := &fakeConfigRepo{config: scheduling.NewConfig(0.4, 5, 3)}
	h := NewSchedulerHandler(configRepo, &fakeAutoScheduleRepo{}, nil, testLogger{})

	req := httptest.NewRequest(http.MethodPut, "/api/scheduler-config", bytes.NewReader([]byte("not-json")))
	rec := httptest.NewRecorder()
	h.UpdateConfig(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchedulerHandler_ListAutoSchedules(t *testing.T) {
	schedule := scheduling.Reconstruct(uuid.New(), time.Now(), time.Now(), nil, uuid.New(), uuid.New(), 1.5, "exploration", scheduling.StatusPending, nil, "")
	autoRepo := &fakeAutoScheduleRepo{recent: []*scheduling.AutoSchedule{schedule}}
	h := NewSchedulerHandler(&fakeConfigRepo{config: scheduling.NewConfig(0.4, 5, 3)}, autoRepo, nil, testLogger{})

	req := httptest.NewRequest(http.MethodGet, "/api/auto-schedules", nil)
	rec := httptest.NewRecorder()
	h.ListAutoSchedules(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
