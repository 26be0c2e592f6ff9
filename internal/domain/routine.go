// internal/domain/routine.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType identifies which collection a plan came from.
type PlanType string

const (
	PlanTypeRoutine   PlanType = "routine"   // user-authored routine
	PlanTypeGenerated PlanType = "generated" // AI-generated plan
)

// RoutineVisibility controls whether a routine is shared.
type RoutineVisibility string

const (
	VisibilityPrivate RoutineVisibility = "Private"
	VisibilityPublic  RoutineVisibility = "Public"
)

// RoutineSummary holds denormalized totals for list screens.
type RoutineSummary struct {
	TotalExercises int `bson:"totalExercises" json:"totalExercises"`
	TotalVolume    int `bson:"totalVolume,omitempty" json:"totalVolume,omitempty"`
}

// Routine is a named, ordered sequence of exercises owned by a user.
// The same shape backs both the "routines" and "generatedPlans" collections.
type Routine struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUID    string             `bson:"ownerUid" json:"ownerUid"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Duration    string             `bson:"duration,omitempty" json:"duration,omitempty"` // e.g., "4 weeks"
	Visibility  RoutineVisibility  `bson:"visibility" json:"visibility"`
	Exercises   []Exercise         `bson:"exercises" json:"exercises"`
	Summary     *RoutineSummary    `bson:"summary,omitempty" json:"summary,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
