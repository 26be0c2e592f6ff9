package service

import (
	"context"
	"errors"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoutineNotFound     = errors.New("routine not found")
	ErrRoutineAccessDenied = errors.New("access denied to modify this routine")
	ErrRoutineInvalid      = errors.New("routine validation failed")
)

// RoutineInput is the caller-supplied routine content.
type RoutineInput struct {
	Name        string
	Description string
	Duration    string
	Visibility  domain.RoutineVisibility
	Exercises   []domain.Exercise
}

// RoutineService manages user-authored routines. A second instance over the
// generatedPlans repository serves AI-generated plans with the same surface.
type RoutineService interface {
	Create(ctx context.Context, ownerUID string, input RoutineInput) (*domain.Routine, error)
	Get(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, error)
	ListForOwner(ctx context.Context, ownerUID string) ([]domain.Routine, error)
	// Update overwrites the routine content; only the owner may update.
	Update(ctx context.Context, ownerUID string, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error)
	// Upsert creates when routineID is nil, otherwise updates.
	Upsert(ctx context.Context, ownerUID string, routineID *primitive.ObjectID, input RoutineInput) (*domain.Routine, error)
}

// routineService implements the RoutineService interface.
type routineService struct {
	repo repository.RoutineRepository
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(repo repository.RoutineRepository) RoutineService {
	return &routineService{repo: repo}
}

// Create stores a new routine, assigning ids to exercises that lack one and
// refreshing the denormalized summary.
func (s *routineService) Create(ctx context.Context, ownerUID string, input RoutineInput) (*domain.Routine, error) {
	if input.Name == "" {
		return nil, ErrRoutineInvalid
	}
	if ownerUID == "" {
		return nil, errors.New("owner uid is required to create a routine")
	}

	routine := &domain.Routine{
		OwnerUID:    ownerUID,
		Name:        input.Name,
		Description: input.Description,
		Duration:    input.Duration,
		Visibility:  input.Visibility,
		Exercises:   normalizeExercises(input.Exercises),
	}
	routine.Summary = &domain.RoutineSummary{TotalExercises: len(routine.Exercises)}

	routineID, err := s.repo.Create(ctx, routine)
	if err != nil {
		return nil, err
	}
	routine.ID = routineID
	// Fetch again to get the repository-populated timestamps.
	return s.repo.GetByID(ctx, routineID)
}

// Get retrieves a single routine.
func (s *routineService) Get(ctx context.Context, routineID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.repo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return routine, nil
}

// ListForOwner retrieves all routines owned by a user.
func (s *routineService) ListForOwner(ctx context.Context, ownerUID string) ([]domain.Routine, error) {
	if ownerUID == "" {
		return nil, errors.New("owner uid cannot be empty")
	}
	return s.repo.GetByOwnerUID(ctx, ownerUID)
}

// Update overwrites an existing routine's content, enforcing ownership.
func (s *routineService) Update(ctx context.Context, ownerUID string, routineID primitive.ObjectID, input RoutineInput) (*domain.Routine, error) {
	if input.Name == "" {
		return nil, ErrRoutineInvalid
	}

	existing, err := s.repo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	if existing.OwnerUID != ownerUID {
		return nil, ErrRoutineAccessDenied
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Duration = input.Duration
	if input.Visibility != "" {
		existing.Visibility = input.Visibility
	}
	existing.Exercises = normalizeExercises(input.Exercises)
	existing.Summary = &domain.RoutineSummary{TotalExercises: len(existing.Exercises)}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Upsert creates or updates depending on whether an id is supplied.
func (s *routineService) Upsert(ctx context.Context, ownerUID string, routineID *primitive.ObjectID, input RoutineInput) (*domain.Routine, error) {
	if routineID != nil && *routineID != primitive.NilObjectID {
		return s.Update(ctx, ownerUID, *routineID, input)
	}
	return s.Create(ctx, ownerUID, input)
}

// normalizeExercises assigns ids to builder rows that lack one.
func normalizeExercises(exercises []domain.Exercise) []domain.Exercise {
	out := make([]domain.Exercise, len(exercises))
	for i, e := range exercises {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out[i] = e
	}
	return out
}
