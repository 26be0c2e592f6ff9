// internal/domain/exercise.go
package domain

// Exercise is a single exercise inside a routine or generated plan,
// as authored in the routine builder.
type Exercise struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Sets     *int   `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps     *int   `bson:"reps,omitempty" json:"reps,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"` // e.g., "30 sec"
	Rest     string `bson:"rest,omitempty" json:"rest,omitempty"`         // e.g., "60 sec"
	Category string `bson:"category,omitempty" json:"category,omitempty"` // e.g., "Stretching"
	BodyPart string `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"` // e.g., "Knee"
}

// ExerciseSummary is the minimal per-exercise shape needed for daily tracking.
// It is a snapshot, decoupled from the live plan document: editing a routine
// does not retroactively change a started session or an existing day entry.
type ExerciseSummary struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Sets     *int   `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps     *int   `bson:"reps,omitempty" json:"reps,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// Summary strips an exercise down to its tracking snapshot.
func (e Exercise) Summary() ExerciseSummary {
	return ExerciseSummary{
		ID:       e.ID,
		Name:     e.Name,
		Sets:     e.Sets,
		Reps:     e.Reps,
		Duration: e.Duration,
	}
}

// Summaries maps a full exercise list to tracking snapshots, preserving order.
func Summaries(exercises []Exercise) []ExerciseSummary {
	summaries := make([]ExerciseSummary, len(exercises))
	for i, e := range exercises {
		summaries[i] = e.Summary()
	}
	return summaries
}
