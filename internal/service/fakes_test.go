package service

import (
	"context"
	"time"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mimic the
// Mongo implementations' contract: ErrNotFound on misses, ids assigned on
// create, documents stored by value.

type fakeDailyLogRepo struct {
	sessions map[string]domain.PlanSession          // keyed by ownerUID
	entries  map[string]map[string]domain.DailyEntry // ownerUID -> dateKey -> entry
}

func newFakeDailyLogRepo() *fakeDailyLogRepo {
	return &fakeDailyLogRepo{
		sessions: make(map[string]domain.PlanSession),
		entries:  make(map[string]map[string]domain.DailyEntry),
	}
}

func (f *fakeDailyLogRepo) GetSession(_ context.Context, ownerUID string) (*domain.PlanSession, error) {
	s, ok := f.sessions[ownerUID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeDailyLogRepo) PutSession(_ context.Context, session *domain.PlanSession) error {
	session.ID = domain.SessionDocID(session.OwnerUID)
	f.sessions[session.OwnerUID] = *session
	return nil
}

func (f *fakeDailyLogRepo) GetEntry(_ context.Context, ownerUID, dateKey string) (*domain.DailyEntry, error) {
	e, ok := f.entries[ownerUID][dateKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e
	return &out, nil
}

func (f *fakeDailyLogRepo) PutEntry(_ context.Context, entry *domain.DailyEntry) error {
	entry.ID = domain.EntryDocID(entry.OwnerUID, entry.DateKey)
	if f.entries[entry.OwnerUID] == nil {
		f.entries[entry.OwnerUID] = make(map[string]domain.DailyEntry)
	}
	f.entries[entry.OwnerUID][entry.DateKey] = *entry
	return nil
}

func (f *fakeDailyLogRepo) UpdateEntryStatuses(_ context.Context, ownerUID, dateKey string, statuses map[string]domain.ExerciseStatus, completedCount int) error {
	e, ok := f.entries[ownerUID][dateKey]
	if !ok {
		return repository.ErrNotFound
	}
	e.Statuses = statuses
	e.CompletedCount = completedCount
	f.entries[ownerUID][dateKey] = e
	return nil
}

func (f *fakeDailyLogRepo) ListEntriesByPlan(_ context.Context, ownerUID string, planType domain.PlanType, planID string) ([]domain.DailyEntry, error) {
	var out []domain.DailyEntry
	for _, e := range f.entries[ownerUID] {
		if e.PlanType == planType && e.PlanID == planID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRoutineRepo struct {
	routines map[primitive.ObjectID]domain.Routine
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{routines: make(map[primitive.ObjectID]domain.Routine)}
}

func (f *fakeRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	routine.ID = id
	f.routines[id] = *routine
	return id, nil
}

func (f *fakeRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r, ok := f.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r
	return &out, nil
}

func (f *fakeRoutineRepo) GetByOwnerUID(_ context.Context, ownerUID string) ([]domain.Routine, error) {
	var out []domain.Routine
	for _, r := range f.routines {
		if r.OwnerUID == ownerUID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoutineRepo) Update(_ context.Context, routine *domain.Routine) error {
	if _, ok := f.routines[routine.ID]; !ok {
		return repository.ErrNotFound
	}
	f.routines[routine.ID] = *routine
	return nil
}

type progressStamp struct {
	PatientUID string
	Percent    int
	At         time.Time
}

type fakeLinkRepo struct {
	links    map[primitive.ObjectID]domain.PatientLink
	progress []progressStamp
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[primitive.ObjectID]domain.PatientLink)}
}

func (f *fakeLinkRepo) Create(_ context.Context, link *domain.PatientLink) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	link.ID = id
	f.links[id] = *link
	return id, nil
}

func (f *fakeLinkRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PatientLink, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := l
	return &out, nil
}

func (f *fakeLinkRepo) GetByDoctorUID(_ context.Context, doctorUID string) ([]domain.PatientLink, error) {
	var out []domain.PatientLink
	for _, l := range f.links {
		if l.DoctorUID == doctorUID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) GetInvitesForPatient(_ context.Context, email, patientUID string) ([]domain.PatientLink, error) {
	var out []domain.PatientLink
	for _, l := range f.links {
		if (email != "" && l.InvitedEmail == email) || (patientUID != "" && l.PatientUID == patientUID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) Update(_ context.Context, link *domain.PatientLink) error {
	if _, ok := f.links[link.ID]; !ok {
		return repository.ErrNotFound
	}
	f.links[link.ID] = *link
	return nil
}

func (f *fakeLinkRepo) SetProgressForPatient(_ context.Context, patientUID string, percent int, at time.Time) error {
	f.progress = append(f.progress, progressStamp{PatientUID: patientUID, Percent: percent, At: at})
	for id, l := range f.links {
		if l.PatientUID == patientUID && l.Status == domain.LinkActive {
			l.ProgressPercent = &percent
			l.LastProgressAt = &at
			f.links[id] = l
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	f.users[id] = *user
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = *user
	return nil
}
