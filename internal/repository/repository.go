package repository

import (
	"context"
	"time"

	"recoverly/physio-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// UpdateProfile writes the onboarding profile fields of the given user.
	UpdateProfile(ctx context.Context, user *domain.User) error
}

// RoutineRepository defines the interface for routine documents. The same
// interface backs both the "routines" and "generatedPlans" collections,
// which share a document shape.
type RoutineRepository interface {
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetByOwnerUID(ctx context.Context, ownerUID string) ([]domain.Routine, error)
	Update(ctx context.Context, routine *domain.Routine) error
}

// DailyLogRepository persists plan sessions and daily entries. Both document
// kinds live in the single dailyLog collection under string ids
// (session_{uid} and entry_{uid}_{dateKey}); entry documents are the ones
// carrying a dateKey field.
type DailyLogRepository interface {
	GetSession(ctx context.Context, ownerUID string) (*domain.PlanSession, error)
	// PutSession fully replaces the user's session document (upsert).
	PutSession(ctx context.Context, session *domain.PlanSession) error

	GetEntry(ctx context.Context, ownerUID, dateKey string) (*domain.DailyEntry, error)
	// PutEntry fully replaces the entry document for its (user, day) key (upsert).
	PutEntry(ctx context.Context, entry *domain.DailyEntry) error
	// UpdateEntryStatuses writes the status map and its derived completed
	// count together in one document update.
	UpdateEntryStatuses(ctx context.Context, ownerUID, dateKey string, statuses map[string]domain.ExerciseStatus, completedCount int) error

	// ListEntriesByPlan fetches entry documents by owner + plan identity
	// (equality filters only), across all dates.
	ListEntriesByPlan(ctx context.Context, ownerUID string, planType domain.PlanType, planID string) ([]domain.DailyEntry, error)
}

// PatientLinkRepository defines the interface for doctor/patient invite links.
type PatientLinkRepository interface {
	Create(ctx context.Context, link *domain.PatientLink) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PatientLink, error)
	GetByDoctorUID(ctx context.Context, doctorUID string) ([]domain.PatientLink, error)
	// GetInvitesForPatient finds links addressed to the given email or
	// already bound to the given patient uid. Either argument may be empty.
	GetInvitesForPatient(ctx context.Context, email, patientUID string) ([]domain.PatientLink, error)
	Update(ctx context.Context, link *domain.PatientLink) error
	// SetProgressForPatient stamps progressPercent on every active link of
	// the patient.
	SetProgressForPatient(ctx context.Context, patientUID string, percent int, at time.Time) error
}
