package domain

import "time"

// ExerciseStatus type for per-exercise completion state within a day.
type ExerciseStatus string

const (
	StatusPending    ExerciseStatus = "pending"
	StatusInProgress ExerciseStatus = "in_progress"
	StatusCompleted  ExerciseStatus = "completed"
)

// Valid reports whether the status is one of the known states.
func (s ExerciseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// DailyEntry is a day-scoped snapshot of a plan's exercises and their
// completion statuses. One entry exists per (user, local calendar day).
//
// CompletedCount and TotalExercises duplicate what Statuses/Exercises
// already encode so that list and progress screens can aggregate without
// re-scanning. They are only ever written together with Statuses, by full
// recomputation, never incremented independently.
type DailyEntry struct {
	ID             string                    `bson:"_id" json:"id"` // entry_{uid}_{dateKey}
	OwnerUID       string                    `bson:"ownerUid" json:"ownerUid"`
	DateKey        string                    `bson:"dateKey" json:"dateKey"` // YYYY-MM-DD (local)
	PlanType       PlanType                  `bson:"planType" json:"planType"`
	PlanID         string                    `bson:"planId" json:"planId"`
	PlanName       string                    `bson:"planName,omitempty" json:"planName,omitempty"`
	Exercises      []ExerciseSummary         `bson:"exercises" json:"exercises"` // snapshot for the day
	Statuses       map[string]ExerciseStatus `bson:"statuses" json:"statuses"`
	CompletedCount int                       `bson:"completedCount" json:"completedCount"`
	TotalExercises int                       `bson:"totalExercises" json:"totalExercises"`
	CreatedAt      time.Time                 `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time                 `bson:"updatedAt" json:"updatedAt"`
}

// EntryDocID builds the dailyLog document id for a user's entry on a day.
func EntryDocID(ownerUID, dateKey string) string {
	return "entry_" + ownerUID + "_" + dateKey
}

// CountCompleted tallies completed statuses across the full map.
func CountCompleted(statuses map[string]ExerciseStatus) int {
	count := 0
	for _, s := range statuses {
		if s == StatusCompleted {
			count++
		}
	}
	return count
}

// MatchesPlan reports whether the entry was materialized from the given plan.
func (e *DailyEntry) MatchesPlan(planType PlanType, planID string) bool {
	return e.PlanType == planType && e.PlanID == planID
}
