package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	calls  []EventRequest
	failOn map[int]error // 1-based call index
}

func (f *fakeCommitter) CreateEvent(_ context.Context, req EventRequest) (domain.CommittedEvent, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.failOn[len(f.calls)]; ok {
		return domain.CommittedEvent{}, err
	}
	return domain.CommittedEvent{
		TaskID:  req.Task.ID,
		EventID: fmt.Sprintf("evt-%d", len(f.calls)),
		Title:   req.Task.Title,
		Start:   req.Start,
		End:     req.End,
	}, nil
}

func twoHourTasks(n int) []domain.Task {
	tasks := make([]domain.Task, n)
	for i := range tasks {
		tasks[i] = task(i+1, domain.CategoryCoding, 2, 5)
	}
	return tasks
}

func eventsByDay(events []domain.CommittedEvent) map[string][]domain.CommittedEvent {
	out := map[string][]domain.CommittedEvent{}
	for _, e := range events {
		out[DayKey(e.Start)] = append(out[DayKey(e.Start)], e)
	}
	return out
}

func TestCalendarScheduler_SkipsBusyInterval(t *testing.T) {
	committer := &fakeCommitter{}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)
	busy := []domain.Interval{{Start: at(monday, 9, 0), End: at(monday, 11, 0)}}

	res := s.Schedule(context.Background(), []domain.Task{task(1, domain.CategoryCoding, 1, 5)}, busy, at(monday, 8, 0))

	require.NoError(t, res.Err)
	require.Len(t, res.Placed, 1)
	assert.Equal(t, at(monday, 11, 0), res.Placed[0].Start)
	assert.Equal(t, at(monday, 12, 0), res.Placed[0].End)
	assert.Empty(t, res.Unplaced)
}

func TestCalendarScheduler_DailyHourCap(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.SpreadAfterTasks = 0
	committer := &fakeCommitter{}
	s := NewCalendarScheduler(cfg, committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(5), nil, at(monday, 8, 0))

	require.NoError(t, res.Err)
	require.Len(t, res.Placed, 5)
	days := eventsByDay(res.Placed)
	require.Len(t, days["2024-01-01"], 3)
	require.Len(t, days["2024-01-02"], 2)

	mon := days["2024-01-01"]
	assert.Equal(t, at(monday, 9, 0), mon[0].Start)
	assert.Equal(t, at(monday, 11, 30), mon[1].Start)
	assert.Equal(t, at(monday, 14, 0), mon[2].Start)

	tue := days["2024-01-02"]
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 9, 0), tue[0].Start)
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 11, 30), tue[1].Start)
}

func TestCalendarScheduler_SpreadsAcrossDays(t *testing.T) {
	committer := &fakeCommitter{}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(5), nil, at(monday, 8, 0))

	require.NoError(t, res.Err)
	days := eventsByDay(res.Placed)
	assert.Len(t, days["2024-01-01"], 2)
	assert.Len(t, days["2024-01-02"], 2)
	assert.Len(t, days["2024-01-03"], 1)
	assert.Equal(t, at(monday.AddDate(0, 0, 2), 9, 0), days["2024-01-03"][0].Start)
}

func TestCalendarScheduler_TaskCountCap(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.SpreadAfterTasks = 0
	tasks := make([]domain.Task, 5)
	for i := range tasks {
		tasks[i] = task(i+1, domain.CategoryAdmin, 1, 5)
	}
	s := NewCalendarScheduler(cfg, &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), tasks, nil, at(monday, 8, 0))

	require.NoError(t, res.Err)
	days := eventsByDay(res.Placed)
	assert.Len(t, days["2024-01-01"], 4)
	require.Len(t, days["2024-01-02"], 1)
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 9, 0), days["2024-01-02"][0].Start)
}

func TestCalendarScheduler_HighestPriorityFirst(t *testing.T) {
	committer := &fakeCommitter{}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)
	tasks := []domain.Task{task(1, domain.CategoryAdmin, 1, 2), task(2, domain.CategoryCoding, 1, 9)}

	res := s.Schedule(context.Background(), tasks, nil, at(monday, 8, 0))

	require.Len(t, res.Placed, 2)
	assert.Equal(t, 2, res.Placed[0].TaskID)
	assert.Equal(t, at(monday, 9, 0), res.Placed[0].Start)
	assert.Equal(t, 1, res.Placed[1].TaskID)
	assert.Equal(t, at(monday, 10, 30), res.Placed[1].Start)
}

func TestCalendarScheduler_ClipsAtWorkEnd(t *testing.T) {
	busy := []domain.Interval{{Start: at(monday, 9, 0), End: at(monday, 16, 0)}}
	s := NewCalendarScheduler(DefaultLoadConfig(), &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), []domain.Task{task(1, domain.CategoryCoding, 2, 5)}, busy, at(monday, 8, 0))

	require.Len(t, res.Placed, 1)
	assert.Equal(t, at(monday, 16, 0), res.Placed[0].Start)
	assert.Equal(t, at(monday, 17, 0), res.Placed[0].End)
}

func TestCalendarScheduler_ClippedBelowMinimumMovesToNextDay(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.Step = 15 * time.Minute
	busy := []domain.Interval{{Start: at(monday, 9, 0), End: at(monday, 16, 45)}}
	s := NewCalendarScheduler(cfg, &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), []domain.Task{task(1, domain.CategoryCoding, 2, 5)}, busy, at(monday, 8, 0))

	require.Len(t, res.Placed, 1)
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 9, 0), res.Placed[0].Start)
}

func TestCalendarScheduler_FullyBookedLeavesTaskUnplaced(t *testing.T) {
	var busy []domain.Interval
	for d := 0; d < 21; d++ {
		day := monday.AddDate(0, 0, d)
		busy = append(busy, domain.Interval{Start: at(day, 9, 0), End: at(day, 17, 0)})
	}
	committer := &fakeCommitter{}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(2), busy, at(monday, 8, 0))

	require.NoError(t, res.Err)
	assert.Empty(t, res.Placed)
	require.Len(t, res.Unplaced, 2)
	assert.Equal(t, ReasonNoSlot, res.Unplaced[0].Reason)
	assert.Empty(t, committer.calls)
}

func TestCalendarScheduler_TaskLongerThanDailyCapIsUnplaced(t *testing.T) {
	s := NewCalendarScheduler(DefaultLoadConfig(), &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), []domain.Task{task(1, domain.CategoryCoding, 7, 5)}, nil, at(monday, 8, 0))

	assert.Empty(t, res.Placed)
	require.Len(t, res.Unplaced, 1)
	assert.Equal(t, ReasonNoSlot, res.Unplaced[0].Reason)
}

func TestCalendarScheduler_PermissionDeniedAborts(t *testing.T) {
	denied := fmt.Errorf("inserting event: %w", domain.ErrCalendarPermissionDenied)
	committer := &fakeCommitter{failOn: map[int]error{2: denied}}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(3), nil, at(monday, 8, 0))

	assert.True(t, res.PermissionDenied())
	assert.Len(t, committer.calls, 2)
	require.Len(t, res.Placed, 1)
	require.Len(t, res.Unplaced, 2)
	assert.Equal(t, ReasonAborted, res.Unplaced[0].Reason)
	assert.Equal(t, ReasonAborted, res.Unplaced[1].Reason)
}

func TestCalendarScheduler_OtherCommitErrorSkipsTask(t *testing.T) {
	committer := &fakeCommitter{failOn: map[int]error{2: errors.New("backend unavailable")}}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(3), nil, at(monday, 8, 0))

	require.NoError(t, res.Err)
	assert.Len(t, committer.calls, 3)
	assert.Len(t, res.Placed, 2)
	require.Len(t, res.Unplaced, 1)
	assert.Equal(t, 2, res.Unplaced[0].TaskID)
	assert.Equal(t, ReasonCommitFailed, res.Unplaced[0].Reason)
}

func TestCalendarScheduler_FailedCommitDoesNotConsumeSlot(t *testing.T) {
	committer := &fakeCommitter{failOn: map[int]error{1: errors.New("boom")}}
	s := NewCalendarScheduler(DefaultLoadConfig(), committer, nil)

	res := s.Schedule(context.Background(), twoHourTasks(2), nil, at(monday, 8, 0))

	require.Len(t, res.Placed, 1)
	assert.Equal(t, at(monday, 9, 0), res.Placed[0].Start)
}

func TestCalendarScheduler_StartCursor(t *testing.T) {
	s := NewCalendarScheduler(DefaultLoadConfig(), &fakeCommitter{}, nil)

	assert.Equal(t, at(monday, 9, 0), s.StartCursor(at(monday, 8, 0)))
	assert.Equal(t, at(monday, 9, 0), s.StartCursor(at(monday, 9, 0)))
	assert.Equal(t, at(monday.AddDate(0, 0, 1), 9, 0), s.StartCursor(at(monday, 10, 0)))
}

func TestCalendarScheduler_WeekendNowStartsMonday(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	s := NewCalendarScheduler(DefaultLoadConfig(), &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), []domain.Task{task(1, domain.CategoryCoding, 1, 5)}, nil, at(saturday, 12, 0))

	require.Len(t, res.Placed, 1)
	assert.Equal(t, at(monday.AddDate(0, 0, 7), 9, 0), res.Placed[0].Start)
}

func TestCalendarScheduler_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewCalendarScheduler(DefaultLoadConfig(), &fakeCommitter{}, nil)

	res := s.Schedule(ctx, twoHourTasks(2), nil, at(monday, 8, 0))

	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Len(t, res.Unplaced, 2)
}

func TestCalendarScheduler_InvalidConfig(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.WorkStartHour = 18
	s := NewCalendarScheduler(cfg, &fakeCommitter{}, nil)

	res := s.Schedule(context.Background(), twoHourTasks(1), nil, at(monday, 8, 0))
	assert.ErrorIs(t, res.Err, domain.ErrInvalidWindow)
}
