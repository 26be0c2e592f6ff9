package service

import (
	"context"
	"testing"
	"time"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// trackerFixture wires a TrackingService over in-memory fakes with one
// stored routine ready to start.
type trackerFixture struct {
	svc       TrackingService
	dailyLog  *fakeDailyLogRepo
	routines  *fakeRoutineRepo
	generated *fakeRoutineRepo
	links     *fakeLinkRepo
	routine   domain.Routine
	ownerUID  string
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	f := &trackerFixture{
		dailyLog:  newFakeDailyLogRepo(),
		routines:  newFakeRoutineRepo(),
		generated: newFakeRoutineRepo(),
		links:     newFakeLinkRepo(),
		ownerUID:  "patient-1",
	}
	f.svc = NewTrackingService(f.dailyLog, f.routines, f.generated, f.links)

	routine := domain.Routine{
		OwnerUID: f.ownerUID,
		Name:     "Knee Recovery",
		Duration: "4 weeks",
		Exercises: []domain.Exercise{
			{ID: "ex-1", Name: "Quad Sets", Sets: intPtr(3), Reps: intPtr(10)},
			{ID: "ex-2", Name: "Heel Slides", Duration: "30 sec"},
		},
	}
	_, err := f.routines.Create(context.Background(), &routine)
	require.NoError(t, err)
	f.routine = routine
	return f
}

func (f *trackerFixture) routineRef() PlanRef {
	return PlanRef{Type: domain.PlanTypeRoutine, ID: f.routine.ID.Hex()}
}

func TestStartPlanCreatesSessionAndTodayEntry(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	result, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	require.NotNil(t, result.Entry)

	session := result.Session
	assert.Equal(t, domain.SessionDocID(f.ownerUID), session.ID)
	assert.Equal(t, domain.PlanTypeRoutine, session.PlanType)
	assert.Equal(t, f.routine.ID.Hex(), session.PlanID)
	assert.Equal(t, "Knee Recovery", session.PlanName)
	assert.Equal(t, 28, session.DurationDays)
	assert.Equal(t, schedule.StartOfDay(time.Now()), session.StartDate)
	assert.Equal(t, schedule.WindowEnd(session.StartDate, 28), session.EndDate)
	assert.True(t, session.Active(time.Now()))

	entry := result.Entry
	assert.Equal(t, domain.EntryDocID(f.ownerUID, schedule.DateKey(time.Now())), entry.ID)
	assert.Equal(t, 2, entry.TotalExercises)
	assert.Equal(t, 0, entry.CompletedCount)
	assert.Equal(t, domain.StatusPending, entry.Statuses["ex-1"])
	assert.Equal(t, domain.StatusPending, entry.Statuses["ex-2"])
	require.Len(t, entry.Exercises, 2)
	assert.Equal(t, "Quad Sets", entry.Exercises[0].Name)
}

func TestStartPlanIsIdempotentForSamePlan(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	first, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)

	// Make some progress, then start the same plan again.
	_, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, first.Entry.DateKey, "ex-1", domain.StatusCompleted)
	require.NoError(t, err)

	second, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Entry.CompletedCount)
	assert.Equal(t, domain.StatusCompleted, second.Entry.Statuses["ex-1"])
	assert.Equal(t, first.Session.EndDate, second.Session.EndDate)
}

func TestStartPlanKeepsRemainingWindow(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	// A session from a week ago with three weeks remaining, but no entry
	// for today yet.
	start := schedule.StartOfDay(time.Now()).AddDate(0, 0, -7)
	end := schedule.WindowEnd(start, 28)
	require.NoError(t, f.dailyLog.PutSession(ctx, &domain.PlanSession{
		OwnerUID:     f.ownerUID,
		PlanType:     domain.PlanTypeRoutine,
		PlanID:       f.routine.ID.Hex(),
		PlanName:     f.routine.Name,
		DurationDays: 28,
		StartDate:    start,
		EndDate:      end,
		Exercises:    domain.Summaries(f.routine.Exercises),
	}))

	result, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)
	assert.Equal(t, end, result.Session.EndDate, "remaining window must carry over")
	assert.Equal(t, schedule.DateKey(time.Now()), result.Entry.DateKey)
}

func TestStartPlanConflictRequiresResolution(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	other := domain.Routine{
		OwnerUID:  f.ownerUID,
		Name:      "Shoulder Mobility",
		Duration:  "2 weeks",
		Exercises: []domain.Exercise{{ID: "ex-9", Name: "Pendulum Swings"}},
	}
	_, err := f.routines.Create(ctx, &other)
	require.NoError(t, err)

	_, err = f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)

	otherRef := PlanRef{Type: domain.PlanTypeRoutine, ID: other.ID.Hex()}
	_, err = f.svc.StartPlan(ctx, f.ownerUID, otherRef, ResolutionNone)
	assert.ErrorIs(t, err, ErrPlanConflict)

	t.Run("keep current", func(t *testing.T) {
		result, err := f.svc.StartPlan(ctx, f.ownerUID, otherRef, ResolutionKeepCurrent)
		require.NoError(t, err)
		// Today stays on the original plan; the session record matches it.
		assert.Equal(t, f.routine.ID.Hex(), result.Entry.PlanID)
		assert.Equal(t, f.routine.ID.Hex(), result.Session.PlanID)
	})

	t.Run("start fresh", func(t *testing.T) {
		// Progress on the old plan gets discarded by a fresh start.
		_, err := f.svc.UpdateExerciseStatus(ctx, f.ownerUID, schedule.DateKey(time.Now()), "ex-1", domain.StatusCompleted)
		require.NoError(t, err)

		result, err := f.svc.StartPlan(ctx, f.ownerUID, otherRef, ResolutionStartFresh)
		require.NoError(t, err)
		assert.Equal(t, other.ID.Hex(), result.Entry.PlanID)
		assert.Equal(t, other.ID.Hex(), result.Session.PlanID)
		assert.Equal(t, 0, result.Entry.CompletedCount)
		assert.Equal(t, 1, result.Entry.TotalExercises)
		assert.Equal(t, 14, result.Session.DurationDays)
		assert.Equal(t, schedule.WindowEnd(schedule.StartOfDay(time.Now()), 14), result.Session.EndDate)
	})
}

func TestStartPlanUnknownPlan(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartPlan(ctx, f.ownerUID, PlanRef{Type: domain.PlanTypeRoutine, ID: "not-a-hex-id"}, ResolutionNone)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = f.svc.StartPlan(ctx, f.ownerUID, PlanRef{Type: "bogus", ID: f.routine.ID.Hex()}, ResolutionNone)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestUpdateExerciseStatusRecomputesCount(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	started, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)
	dateKey := started.Entry.DateKey

	entry, err := f.svc.UpdateExerciseStatus(ctx, f.ownerUID, dateKey, "ex-1", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.CompletedCount)

	entry, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, dateKey, "ex-2", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.CompletedCount)

	// Un-completing drops the count back down.
	entry, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, dateKey, "ex-1", domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.CompletedCount)
	assert.Equal(t, domain.StatusInProgress, entry.Statuses["ex-1"])
}

func TestUpdateExerciseStatusValidation(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	started, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)
	dateKey := started.Entry.DateKey

	_, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, dateKey, "ex-1", "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, dateKey, "ex-404", domain.StatusCompleted)
	assert.ErrorIs(t, err, ErrExerciseNotInEntry)

	// No entry for that day: nothing to update, not an error.
	entry, err := f.svc.UpdateExerciseStatus(ctx, f.ownerUID, "1999-01-01", "ex-1", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestUpdateExerciseStatusStampsLinkProgress(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	started, err := f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)

	_, err = f.svc.UpdateExerciseStatus(ctx, f.ownerUID, started.Entry.DateKey, "ex-1", domain.StatusCompleted)
	require.NoError(t, err)

	require.Len(t, f.links.progress, 1)
	assert.Equal(t, f.ownerUID, f.links.progress[0].PatientUID)
	assert.Equal(t, 50, f.links.progress[0].Percent)
}

func TestTodayMaterializesFromActiveSession(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	// No session at all: the day is simply empty.
	entry, err := f.svc.Today(ctx, f.ownerUID)
	require.NoError(t, err)
	assert.Nil(t, entry)

	_, err = f.svc.StartPlan(ctx, f.ownerUID, f.routineRef(), ResolutionNone)
	require.NoError(t, err)

	// Simulate the next day by removing today's entry; the active session
	// must re-materialize it.
	delete(f.entriesFor(f.ownerUID), schedule.DateKey(time.Now()))
	entry, err = f.svc.Today(ctx, f.ownerUID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 0, entry.CompletedCount)
	assert.Equal(t, f.routine.ID.Hex(), entry.PlanID)
}

func TestTodayLapsedWindowStaysEmpty(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	start := schedule.StartOfDay(time.Now()).AddDate(0, 0, -60)
	require.NoError(t, f.dailyLog.PutSession(ctx, &domain.PlanSession{
		OwnerUID:     f.ownerUID,
		PlanType:     domain.PlanTypeRoutine,
		PlanID:       f.routine.ID.Hex(),
		DurationDays: 28,
		StartDate:    start,
		EndDate:      schedule.WindowEnd(start, 28),
		Exercises:    domain.Summaries(f.routine.Exercises),
	}))

	entry, err := f.svc.Today(ctx, f.ownerUID)
	require.NoError(t, err)
	assert.Nil(t, entry, "a lapsed window must not roll into new entries")
	assert.Empty(t, f.entriesFor(f.ownerUID))
}

func TestActiveSessionMissing(t *testing.T) {
	f := newTrackerFixture(t)

	_, err := f.svc.ActiveSession(context.Background(), f.ownerUID)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSessionStatsRollup(t *testing.T) {
	f := newTrackerFixture(t)
	ctx := context.Background()

	// Session started three days ago; four elapsed days including today.
	start := schedule.StartOfDay(time.Now()).AddDate(0, 0, -3)
	planID := f.routine.ID.Hex()
	require.NoError(t, f.dailyLog.PutSession(ctx, &domain.PlanSession{
		OwnerUID:     f.ownerUID,
		PlanType:     domain.PlanTypeRoutine,
		PlanID:       planID,
		DurationDays: 28,
		StartDate:    start,
		EndDate:      schedule.WindowEnd(start, 28),
		Exercises:    domain.Summaries(f.routine.Exercises),
	}))

	putDay := func(daysAgo, completed int) {
		day := schedule.StartOfDay(time.Now()).AddDate(0, 0, -daysAgo)
		require.NoError(t, f.dailyLog.PutEntry(ctx, &domain.DailyEntry{
			OwnerUID:       f.ownerUID,
			DateKey:        schedule.DateKey(day),
			PlanType:       domain.PlanTypeRoutine,
			PlanID:         planID,
			CompletedCount: completed,
			TotalExercises: 2,
		}))
	}
	putDay(3, 2) // fully done
	putDay(2, 1) // half done
	putDay(0, 0) // today untouched; day -1 has no entry at all

	stats, err := f.svc.SessionStats(ctx, f.ownerUID)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.ElapsedDays)
	assert.Equal(t, 1, stats.CurrentWeek)
	assert.Equal(t, 4, stats.TotalWeeks)
	assert.Equal(t, 50, stats.CompletionRate, "3 of 6 exercise slots completed")
	assert.Equal(t, 2, stats.DaysWithActivity)
	assert.Equal(t, 50, stats.ConsistencyPct, "2 active of 4 elapsed days")

	require.Len(t, stats.Week, 7)
	today := stats.Week[6]
	assert.Equal(t, time.Now().Weekday().String()[:3], today.Day)
	assert.Equal(t, 0, today.Value)
	assert.False(t, today.Done)

	fullDay := stats.Week[3] // three days ago
	assert.Equal(t, 100, fullDay.Value)
	assert.True(t, fullDay.Done)
}

// entriesFor exposes the fake's entry map for test manipulation.
func (f *trackerFixture) entriesFor(ownerUID string) map[string]domain.DailyEntry {
	if f.dailyLog.entries[ownerUID] == nil {
		f.dailyLog.entries[ownerUID] = make(map[string]domain.DailyEntry)
	}
	return f.dailyLog.entries[ownerUID]
}
