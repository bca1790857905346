package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/testutil"
)

func seedWeek(t *testing.T, e *testEnv) []int {
	return e.seed(t,
		testutil.NewTestTask("Parser", testutil.WithHours(1)),
		testutil.NewTestTask("Survey", testutil.WithCategory(domain.CategoryResearch), testutil.WithHours(3)),
		testutil.NewTestTask("Lexer", testutil.WithHours(1)),
	)
}

var nineToFive = ScheduleRequest{DailyStart: 9, DailyEnd: 17}

func coveredTasks(blocks []domain.ScheduledBlock) map[int]bool {
	out := map[int]bool{}
	for _, b := range blocks {
		out[b.TaskID] = true
	}
	return out
}

func TestOptimized_PacksCurrentWeek(t *testing.T) {
	e := newTestEnv(t)
	ids := seedWeek(t, e)

	out, err := e.schedule.Optimized(context.Background(), nineToFive)
	require.NoError(t, err)

	assert.True(t, out.WeekStart.Equal(testutil.Monday))
	assert.InDelta(t, 5.0, out.TotalHours, 1e-9)
	require.Len(t, out.Blocks, 3)
	assert.Equal(t, map[int]bool{ids[0]: true, ids[1]: true, ids[2]: true}, coveredTasks(out.Blocks))
	assert.True(t, out.Blocks[0].Start.Equal(testutil.At(testutil.Monday, 9, 0)))
	// coding, coding, research
	assert.InDelta(t, 1.0/3.0, out.CognitiveTaxScore, 1e-9)
	assert.Equal(t, intelligence.DefaultRecommendations(), out.Recommendations)
}

func TestOptimized_ExplicitWeekAndBadWindow(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)
	next := testutil.Monday.AddDate(0, 0, 7)

	out, err := e.schedule.Optimized(context.Background(), ScheduleRequest{WeekStart: next, DailyStart: 10, DailyEnd: 16})
	require.NoError(t, err)
	assert.True(t, out.Blocks[0].Start.Equal(testutil.At(next, 10, 0)))

	_, err = e.schedule.Optimized(context.Background(), ScheduleRequest{DailyStart: 17, DailyEnd: 9})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestIntelligent_FallsBackToCappedPacking(t *testing.T) {
	e := newTestEnv(t)
	ids := seedWeek(t, e)

	out, err := e.schedule.Intelligent(context.Background(), IntelligentRequest{
		ScheduleRequest:   nineToFive,
		IncludeEmbeddings: true,
	})
	require.NoError(t, err)

	assert.Equal(t, intelligence.SourceRuleBased, out.Plan.Source)
	// The 3h survey is split at the 2h cap.
	assert.Len(t, out.Plan.Blocks, 4)
	assert.Equal(t, map[int]bool{ids[0]: true, ids[1]: true, ids[2]: true}, coveredTasks(out.Plan.Blocks))
	assert.InDelta(t, 5.0, out.TotalHours, 1e-9)

	assert.Equal(t, intelligence.EmbeddingSourceHash, out.EmbeddingSource)
	assert.Equal(t, intelligence.EmbeddingDims, out.EmbeddingDimension)
	require.Len(t, out.EmbeddingSamples, 3)
	for _, s := range out.EmbeddingSamples {
		assert.Len(t, s.Vector, EmbeddingSampleDims)
	}
}

func TestIntelligent_WithoutEmbeddings(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	out, err := e.schedule.Intelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Empty(t, out.EmbeddingSamples)
	assert.Zero(t, out.EmbeddingDimension)
}

func TestCompareCognitiveTax(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	cmp, err := e.schedule.CompareCognitiveTax(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Equal(t, 3, cmp.Basic.Blocks)
	assert.Equal(t, 4, cmp.Intelligent.Blocks)
	if cmp.Improvement.Absolute > 0 {
		assert.Equal(t, "Use intelligent scheduling", cmp.Recommendation)
	} else {
		assert.Equal(t, "Schedules are similar", cmp.Recommendation)
	}
}

func TestCompareCognitiveTax_IdenticalSchedulesAreSimilar(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, testutil.NewTestTask("Only", testutil.WithHours(1)))

	cmp, err := e.schedule.CompareCognitiveTax(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Zero(t, cmp.Improvement.Absolute)
	assert.Zero(t, cmp.Improvement.Percent)
	assert.Equal(t, "Schedules are similar", cmp.Recommendation)
}

func TestExportICS(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	out, err := e.schedule.ExportICS(context.Background(), nineToFive)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR"))
	assert.Equal(t, 3, strings.Count(text, "BEGIN:VEVENT"))
	assert.Contains(t, text, "SUMMARY:Survey")
}

func TestCommitIntelligent_CreatesOneEventPerBlock(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)

	res, err := e.schedule.CommitIntelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Equal(t, domain.RunOutcomeOK, res.Outcome)
	assert.Len(t, res.Created, 4)
	assert.Empty(t, res.Failed)
	assert.Len(t, e.cal.Events(), 4)
}

func TestCommitIntelligent_PermissionDeniedStops(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)
	e.cal.FailCreate = func(calendar.EventInput) error {
		return fmt.Errorf("insert: %w", domain.ErrCalendarPermissionDenied)
	}

	res, err := e.schedule.CommitIntelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Equal(t, domain.RunOutcomePermissionDenied, res.Outcome)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Failed, 1)
	assert.Contains(t, res.Message, "Re-authenticate")
}

func TestCommitIntelligent_PerBlockFailureContinues(t *testing.T) {
	e := newTestEnv(t)
	seedWeek(t, e)
	e.cal.FailCreate = func(in calendar.EventInput) error {
		if in.Summary == "Lexer" {
			return fmt.Errorf("rate limited")
		}
		return nil
	}

	res, err := e.schedule.CommitIntelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	require.NoError(t, err)

	assert.Equal(t, domain.RunOutcomePartial, res.Outcome)
	assert.Len(t, res.Created, 3)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Lexer", res.Failed[0].Title)
}

func TestCommitIntelligent_Preconditions(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.schedule.CommitIntelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	assert.ErrorIs(t, err, ErrNoTasks)

	e.build(nil)
	_, err = e.schedule.CommitIntelligent(context.Background(), IntelligentRequest{ScheduleRequest: nineToFive})
	assert.ErrorIs(t, err, domain.ErrNoCalendarAccess)
}

func TestEmbeddingSamples_OnePerTaskInBlockOrder(t *testing.T) {
	blocks := []domain.ScheduledBlock{{TaskID: 2}, {TaskID: 1}, {TaskID: 2}, {TaskID: 9}}
	vectors := map[int][]float64{1: {1, 2, 3, 4, 5, 6}, 2: {7, 8}}

	samples := embeddingSamples(blocks, vectors)

	require.Len(t, samples, 2)
	assert.Equal(t, EmbeddingSample{TaskID: 2, Vector: []float64{7, 8}}, samples[0])
	assert.Equal(t, EmbeddingSample{TaskID: 1, Vector: []float64{1, 2, 3, 4, 5}}, samples[1])
}
