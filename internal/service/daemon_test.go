package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/testutil"
)

func newTestDaemon(t *testing.T, e *testEnv, spec string) (*Daemon, *[]CalendarSettings) {
	t.Helper()
	var built []CalendarSettings
	d, err := NewDaemon(DaemonSettings{Spec: spec, Calendar: CalendarSettings{Location: time.UTC}},
		func(s CalendarSettings) CalendarService {
			built = append(built, s)
			return e.calendar
		}, testutil.DiscardLogger())
	require.NoError(t, err)
	return d, &built
}

func TestNewDaemon_RejectsBadSpec(t *testing.T) {
	_, err := NewDaemon(DaemonSettings{Spec: "every tuesday"}, func(CalendarSettings) CalendarService { return nil }, nil)
	assert.Error(t, err)
}

func TestNewDaemon_DefaultSpec(t *testing.T) {
	e := newTestEnv(t)
	d, _ := newTestDaemon(t, e, "")

	assert.Equal(t, DefaultDaemonSpec, d.Spec())
}

func TestDaemonRunOnce_SchedulesPendingTasks(t *testing.T) {
	e := newTestEnv(t)
	ids := e.seed(t, testutil.NewTestTask("Pending"))
	d, _ := newTestDaemon(t, e, "@hourly")

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RunOutcomeOK, res.Outcome)
	require.Len(t, res.Placed, 1)
	assert.Equal(t, ids[0], res.Placed[0].TaskID)
	assert.Equal(t, 1, d.Runs())

	// A second tick has nothing left to do.
	res, err = d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Placed)

	runs, err := e.calendar.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, TriggerDaemon, runs[0].Trigger)
}

func TestDaemonApply_RebuildsCalendarAndValidatesSpec(t *testing.T) {
	e := newTestEnv(t)
	d, built := newTestDaemon(t, e, "@hourly")
	ctx := context.Background()

	err := d.Apply(ctx, DaemonSettings{Spec: "not a spec"})
	assert.Error(t, err)
	assert.Equal(t, "@hourly", d.Spec())
	assert.Len(t, *built, 1)

	require.NoError(t, d.Apply(ctx, DaemonSettings{Spec: "*/5 * * * *", Calendar: CalendarSettings{Location: time.UTC}}))
	assert.Equal(t, "*/5 * * * *", d.Spec())
	assert.Len(t, *built, 2)
}

func TestDaemonRun_AppliesUpdatesUntilCancelled(t *testing.T) {
	e := newTestEnv(t)
	d, built := newTestDaemon(t, e, "@yearly")
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan DaemonSettings)
	done := make(chan error, 1)

	go func() { done <- d.Run(ctx, updates) }()
	updates <- DaemonSettings{Spec: "@monthly", Calendar: CalendarSettings{Location: time.UTC}}
	// The unbuffered send returns once Run has received it; a second
	// send guarantees the first was applied.
	updates <- DaemonSettings{Spec: "@weekly", Calendar: CalendarSettings{Location: time.UTC}}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Contains(t, []string{"@monthly", "@weekly"}, d.Spec())
	assert.GreaterOrEqual(t, len(*built), 2)
	assert.Zero(t, d.Runs())
}
