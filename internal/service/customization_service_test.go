package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/schedule"
	"alcyxob/fitness-planner/internal/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEntry(id uuid.UUID) CustomizationEntry {
	return CustomizationEntry{ExerciseSetID: testutil.UUIDPtr(id)}
}

func TestApplyCustomizationsWeightAndRPE(t *testing.T) {
	f := newFixture(t)
	set := f.routine.FirstSet()

	e := setEntry(set.ID)
	e.CustomWeight = testutil.FloatPtr(70)
	e.CustomRPE = testutil.IntPtr(8)
	result, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 8, []CustomizationEntry{e})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, int64(1), result.TotalCustomizations)

	view, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, schedule.DayStatusRoutine, view.Status)
	assert.Equal(t, 2, view.MicrocycleNumber)
	assert.Equal(t, 1, view.DayOfMicrocycle)
	assert.Equal(t, "Push", view.RoutineName)
	assert.True(t, view.HasCustomizations)
	assert.Equal(t, 1, view.TotalCustomizations)

	got := view.Exercises[0].Sets[0]
	assert.Equal(t, set.ID, got.ID)
	assert.Equal(t, 70.0, *got.Weight)
	assert.Equal(t, 8, *got.RPE)
	assert.Nil(t, got.RIR)
	assert.Equal(t, 8, *got.RepsMin)
	assert.Equal(t, 12, *got.RepsMax)
	assert.True(t, got.IsCustomized)
	assert.Equal(t, 60.0, *got.TargetWeight, "base target is reported alongside")
	assert.Equal(t, 1, view.Exercises[0].CustomizedSetsCount)

	untouched := view.Exercises[0].Sets[1]
	assert.False(t, untouched.IsCustomized)
	assert.Equal(t, 60.0, *untouched.Weight)
	assert.Equal(t, 2, *untouched.RIR)

	// the same microcycle day in another week keeps the base values
	other, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 1)
	require.NoError(t, err)
	assert.False(t, other.HasCustomizations)
	assert.Equal(t, 60.0, *other.Exercises[0].Sets[0].Weight)
}

func TestApplyCustomizationsOutcomes(t *testing.T) {
	f := newFixture(t)
	set := f.routine.FirstSet()
	heavy := setEntry(set.ID)
	heavy.CustomWeight = testutil.FloatPtr(75)

	tests := []struct {
		name      string
		entry     CustomizationEntry
		wantSaved int
		wantDel   int
		wantSame  int
		wantTotal int64
	}{
		{"first write saves", heavy, 1, 0, 0, 1},
		{"identical write is unchanged", heavy, 0, 0, 1, 1},
		{"empty entry deletes", setEntry(set.ID), 0, 1, 0, 0},
		{"empty entry without a row is unchanged", setEntry(set.ID), 0, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, []CustomizationEntry{tt.entry})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, result.Saved)
			assert.Equal(t, tt.wantDel, result.Deleted)
			assert.Equal(t, tt.wantSame, result.Unchanged)
			assert.Zero(t, result.Failed)
			assert.Equal(t, tt.wantTotal, result.TotalCustomizations)
		})
	}
}

func TestApplyCustomizationsMergesFields(t *testing.T) {
	f := newFixture(t)
	set := f.routine.FirstSet()
	apply := func(e CustomizationEntry) {
		t.Helper()
		_, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, []CustomizationEntry{e})
		require.NoError(t, err)
	}

	first := setEntry(set.ID)
	first.CustomWeight = testutil.FloatPtr(70)
	first.CustomRPE = testutil.IntPtr(8)
	first.CustomNotes = testutil.StringPtr("  pause reps ")
	apply(first)

	stored, err := f.store.Customizations.Find(f.ctx, f.plan.ID, 1, set.ID)
	require.NoError(t, err)
	firstID := stored.ID
	assert.Equal(t, "pause reps", *stored.CustomNotes)

	second := setEntry(set.ID)
	second.CustomRepsMin = testutil.IntPtr(6)
	second.CustomRIR = testutil.IntPtr(3)
	second.CustomNotes = testutil.StringPtr("   ")
	apply(second)

	stored, err = f.store.Customizations.Find(f.ctx, f.plan.ID, 1, set.ID)
	require.NoError(t, err)
	assert.Equal(t, firstID, stored.ID, "row is updated in place")
	assert.Equal(t, 70.0, *stored.CustomWeight, "omitted fields keep their override")
	assert.Equal(t, 6, *stored.CustomRepsMin)
	assert.Equal(t, 3, *stored.CustomRIR)
	assert.Nil(t, stored.CustomRPE, "setting RIR clears RPE")
	assert.Nil(t, stored.CustomNotes, "blank notes clear the note")
	assert.Equal(t, set.RoutineExerciseID, stored.RoutineExerciseID)
}

func TestApplyCustomizationsValidation(t *testing.T) {
	f := newFixture(t)
	set := f.routine.FirstSet()

	bad := setEntry(set.ID)
	bad.CustomRepsMin = testutil.IntPtr(12)
	bad.CustomRepsMax = testutil.IntPtr(8)
	bad.CustomRIR = testutil.IntPtr(2)
	bad.CustomRPE = testutil.IntPtr(8)
	negative := setEntry(set.ID)
	negative.CustomWeight = testutil.FloatPtr(-5)

	_, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1,
		[]CustomizationEntry{{}, bad, negative})
	requireKind(t, err, apperr.KindValidation)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Violations, 4)

	count, err := f.store.Customizations.CountByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestApplyCustomizationsDayChecks(t *testing.T) {
	f := newFixture(t)
	e := setEntry(f.routine.FirstSet().ID)
	e.CustomWeight = testutil.FloatPtr(70)

	tests := []struct {
		name string
		day  int
		want apperr.Kind
	}{
		{"rest day", 17, apperr.KindCannotCustomize},
		{"unassigned day", 2, apperr.KindCannotCustomize},
		{"zero day", 0, apperr.KindValidation},
		{"past the end", 29, apperr.KindOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, tt.day, []CustomizationEntry{e})
			requireKind(t, err, tt.want)
		})
	}
}

func TestApplyCustomizationsPartialFailure(t *testing.T) {
	f := newFixture(t)
	pull := testutil.SeedRoutine(t, f.store, f.owner, "Pull")

	ok := setEntry(f.routine.FirstSet().ID)
	ok.CustomWeight = testutil.FloatPtr(70)
	unknown := setEntry(uuid.New())
	unknown.CustomWeight = testutil.FloatPtr(70)
	foreign := setEntry(pull.FirstSet().ID)
	foreign.CustomWeight = testutil.FloatPtr(70)

	result, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1,
		[]CustomizationEntry{ok, unknown, foreign})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Contains(t, result.Failures[0].Reason, "not found")
	assert.Equal(t, 2, result.Failures[1].Index)
	assert.Contains(t, result.Failures[1].Reason, "not part of")
	assert.Equal(t, int64(1), result.TotalCustomizations)
}

func TestApplyCustomizationsRejectsInvalidMerge(t *testing.T) {
	f := newFixture(t)
	set := f.routine.FirstSet()

	low := setEntry(set.ID)
	low.CustomRepsMax = testutil.IntPtr(5)
	_, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, []CustomizationEntry{low})
	require.NoError(t, err)

	high := setEntry(set.ID)
	high.CustomRepsMin = testutil.IntPtr(6)
	result, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, []CustomizationEntry{high})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	stored, err := f.store.Customizations.Find(f.ctx, f.plan.ID, 1, set.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CustomRepsMin)
	assert.Equal(t, 5, *stored.CustomRepsMax)
}

func TestApplyCustomizationsEmptyBatch(t *testing.T) {
	f := newFixture(t)
	f.customize(t, 1, f.routine.FirstSet(), 70)

	result, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCustomizations)
	assert.Zero(t, result.Saved+result.Deleted+result.Unchanged+result.Failed)

	tests := []struct {
		name string
		day  int
		want apperr.Kind
	}{
		{"day zero", 0, apperr.KindValidation},
		{"negative day", -3, apperr.KindValidation},
		{"past the end", 29, apperr.KindOutOfRange},
		{"far past the end", 9999, apperr.KindOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, tt.day, nil)
			requireKind(t, err, tt.want)
		})
	}
}

func TestApplyCustomizationsAccessRules(t *testing.T) {
	f := newFixture(t)
	e := setEntry(f.routine.FirstSet().ID)
	e.CustomWeight = testutil.FloatPtr(70)

	_, err := f.customizations.ApplyCustomizations(f.ctx, uuid.New(), f.plan.ID, 1, []CustomizationEntry{e})
	requireKind(t, err, apperr.KindNotFound)

	plan := f.reloadPlan(t)
	plan.IsArchived = true
	require.NoError(t, f.store.Plans.Update(f.ctx, plan))

	_, err = f.customizations.ApplyCustomizations(f.ctx, f.owner, f.plan.ID, 1, []CustomizationEntry{e})
	requireKind(t, err, apperr.KindConflict)

	// archived plans stay readable
	_, err = f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 1)
	assert.NoError(t, err)
}

func TestGetDayViewNonRoutineDays(t *testing.T) {
	f := newFixture(t)

	rest, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 17)
	require.NoError(t, err)
	assert.Equal(t, schedule.DayStatusRest, rest.Status)
	assert.True(t, rest.IsRestDay)
	assert.Equal(t, 3, rest.MicrocycleNumber)
	assert.Equal(t, 3, rest.DayOfMicrocycle)
	assert.Equal(t, testutil.PlanStart.AddDate(0, 0, 16), rest.ActualDate)
	assert.Empty(t, rest.Exercises)
	assert.False(t, rest.HasCustomizations)

	unassigned, err := f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, schedule.DayStatusUnassigned, unassigned.Status)
	assert.Nil(t, unassigned.RoutineID)

	_, err = f.customizations.GetDayView(f.ctx, f.owner, f.plan.ID, 29)
	requireKind(t, err, apperr.KindOutOfRange)
}

func TestGetTodayView(t *testing.T) {
	f := newFixture(t)

	f.now = testutil.PlanStart.AddDate(0, 0, 7).Add(18 * time.Hour)
	view, err := f.customizations.GetTodayView(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, view.AbsoluteDay)

	f.now = testutil.PlanStart.AddDate(0, 0, -1)
	_, err = f.customizations.GetTodayView(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindOutOfRange)

	f.now = testutil.PlanStart.AddDate(0, 0, 28)
	_, err = f.customizations.GetTodayView(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindOutOfRange)
}

func TestGetMicrocycleOverview(t *testing.T) {
	f := newFixture(t)
	f.customize(t, 8, f.routine.FirstSet(), 70)

	overview, err := f.customizations.GetMicrocycleOverview(f.ctx, f.owner, f.plan.ID, 2)
	require.NoError(t, err)
	require.Len(t, overview.Days, 7)
	assert.Equal(t, 8, overview.Days[0].AbsoluteDay)
	assert.Equal(t, "Push", overview.Days[0].RoutineName)
	assert.Equal(t, int64(1), overview.Days[0].CustomizationCount)
	assert.Equal(t, schedule.DayStatusRest, overview.Days[2].Status)
	assert.Equal(t, schedule.DayStatusUnassigned, overview.Days[6].Status)

	_, err = f.customizations.GetMicrocycleOverview(f.ctx, f.owner, f.plan.ID, 0)
	requireKind(t, err, apperr.KindValidation)
	_, err = f.customizations.GetMicrocycleOverview(f.ctx, f.owner, f.plan.ID, 5)
	requireKind(t, err, apperr.KindOutOfRange)
}

func TestGetPlanSchedule(t *testing.T) {
	f := newFixture(t)
	f.customize(t, 15, f.routine.FirstSet(), 80)

	sched, err := f.customizations.GetPlanSchedule(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, sched.Days, 28)
	for i, day := range sched.Days {
		assert.Equal(t, i+1, day.AbsoluteDay)
	}
	assert.True(t, sched.Days[14].HasCustomizations)
	assert.Equal(t, 80.0, *sched.Days[14].Exercises[0].Sets[0].Weight)
	assert.False(t, sched.Days[7].HasCustomizations)
}

func TestResets(t *testing.T) {
	f := newFixture(t)
	first := f.routine.FirstSet()
	second := f.routine.Sets[f.routine.Exercises[0].ID][1]
	f.customize(t, 15, first, 80)
	f.customize(t, 1, first, 70)
	f.customize(t, 1, second, 70)
	f.customize(t, 8, first, 72)

	days, err := f.customizations.ListCustomizedDays(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 8, 15}, days)

	n, err := f.customizations.ResetSet(f.ctx, f.owner, f.plan.ID, 1, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.customizations.ResetSet(f.ctx, f.owner, f.plan.ID, 1, uuid.New())
	requireKind(t, err, apperr.KindNotFound)

	n, err = f.customizations.ResetDay(f.ctx, f.owner, f.plan.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.customizations.ResetDay(f.ctx, f.owner, f.plan.ID, 40)
	requireKind(t, err, apperr.KindOutOfRange)

	n, err = f.customizations.ResetAll(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	days, err = f.customizations.ListCustomizedDays(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestMergeEntry(t *testing.T) {
	row := &domain.DayCustomization{CustomRIR: testutil.IntPtr(2), CustomWeight: testutil.FloatPtr(60)}

	e := CustomizationEntry{CustomRPE: testutil.IntPtr(9), CustomRIR: testutil.IntPtr(1)}
	mergeEntry(row, e)

	assert.Equal(t, 9, *row.CustomRPE, "RPE wins when both arrive")
	assert.Nil(t, row.CustomRIR)
	assert.Equal(t, 60.0, *row.CustomWeight)
}
