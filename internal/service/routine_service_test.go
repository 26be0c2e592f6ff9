package service

import (
	"context"
	"testing"

	"recoverly/physio-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoutineCreateAssignsExerciseIDs(t *testing.T) {
	repo := newFakeRoutineRepo()
	svc := NewRoutineService(repo)

	routine, err := svc.Create(context.Background(), "patient-1", RoutineInput{
		Name:     "Morning Mobility",
		Duration: "2 weeks",
		Exercises: []domain.Exercise{
			{Name: "Cat Cow"},
			{ID: "keep-me", Name: "Bird Dog"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "patient-1", routine.OwnerUID)
	require.Len(t, routine.Exercises, 2)
	assert.NotEmpty(t, routine.Exercises[0].ID)
	assert.Equal(t, "keep-me", routine.Exercises[1].ID)
	require.NotNil(t, routine.Summary)
	assert.Equal(t, 2, routine.Summary.TotalExercises)
}

func TestRoutineCreateRequiresName(t *testing.T) {
	svc := NewRoutineService(newFakeRoutineRepo())

	_, err := svc.Create(context.Background(), "patient-1", RoutineInput{})
	assert.ErrorIs(t, err, ErrRoutineInvalid)
}

func TestRoutineUpdateEnforcesOwnership(t *testing.T) {
	repo := newFakeRoutineRepo()
	svc := NewRoutineService(repo)
	ctx := context.Background()

	routine, err := svc.Create(ctx, "patient-1", RoutineInput{
		Name:      "Morning Mobility",
		Exercises: []domain.Exercise{{Name: "Cat Cow"}},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "someone-else", routine.ID, RoutineInput{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrRoutineAccessDenied)

	updated, err := svc.Update(ctx, "patient-1", routine.ID, RoutineInput{
		Name:      "Evening Mobility",
		Exercises: []domain.Exercise{{Name: "Cat Cow"}, {Name: "Child Pose"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening Mobility", updated.Name)
	assert.Equal(t, 2, updated.Summary.TotalExercises)
}

func TestRoutineUpsert(t *testing.T) {
	repo := newFakeRoutineRepo()
	svc := NewRoutineService(repo)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, "patient-1", nil, RoutineInput{
		Name:      "Morning Mobility",
		Exercises: []domain.Exercise{{Name: "Cat Cow"}},
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	id := created.ID
	updated, err := svc.Upsert(ctx, "patient-1", &id, RoutineInput{
		Name:      "Renamed",
		Exercises: []domain.Exercise{{Name: "Cat Cow"}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestRoutineGetMissing(t *testing.T) {
	svc := NewRoutineService(newFakeRoutineRepo())

	routines, err := svc.ListForOwner(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Empty(t, routines)

	_, err = svc.Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}
