package service

import (
	"context"
	"errors"
	"math"
	"time"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"
	"recoverly/physio-app/internal/schedule"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoActiveSession    = errors.New("no active plan session")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrInvalidStatus      = errors.New("invalid exercise status")
	ErrExerciseNotInEntry = errors.New("exercise is not part of today's entry")
	// ErrPlanConflict signals that today's entry belongs to a different plan
	// and the caller must resolve the conflict explicitly (keep or fresh).
	ErrPlanConflict = errors.New("a different plan is already tracked today")
)

// ConflictResolution is the caller's decision when starting a plan collides
// with an entry already tracked today for a different plan. An empty value
// means no decision was made yet, which surfaces ErrPlanConflict; a client
// that never retries has effectively kept the current plan.
type ConflictResolution string

const (
	ResolutionNone        ConflictResolution = ""
	ResolutionKeepCurrent ConflictResolution = "keep_current"
	ResolutionStartFresh  ConflictResolution = "start_fresh"
)

// PlanRef identifies a plan by origin collection and document id.
type PlanRef struct {
	Type domain.PlanType
	ID   string
}

// StartPlanResult carries the session and today's entry after a start action.
type StartPlanResult struct {
	Session *domain.PlanSession `json:"session"`
	Entry   *domain.DailyEntry  `json:"entry"`
}

// DayBar is one bar of the trailing-week chart.
type DayBar struct {
	Day   string `json:"day"`   // "Mon".."Sun"
	Value int    `json:"value"` // percent complete, 0 when no entry
	Done  bool   `json:"done"`  // every exercise completed
}

// SessionStats is the progress rollup across a session's entries.
type SessionStats struct {
	CompletionRate   int      `json:"completionRate"` // percent
	ConsistencyPct   int      `json:"consistencyPct"` // percent
	DaysWithActivity int      `json:"daysWithActivity"`
	ElapsedDays      int      `json:"elapsedDays"`
	CurrentWeek      int      `json:"currentWeek"`
	TotalWeeks       int      `json:"totalWeeks"`
	Week             []DayBar `json:"week"` // 7 trailing days ending today
}

// TrackingService is the plan session & daily log tracker: it reconciles
// what "today" should look like when plans are started, switched or resumed,
// and rolls up session statistics for the progress screens.
type TrackingService interface {
	ActiveSession(ctx context.Context, ownerUID string) (*domain.PlanSession, error)
	// Today returns today's entry, materializing it from a still-active
	// session when absent. A lapsed session window yields (nil, nil): the
	// day is simply empty, plans are never silently extended.
	Today(ctx context.Context, ownerUID string) (*domain.DailyEntry, error)
	StartPlan(ctx context.Context, ownerUID string, ref PlanRef, resolution ConflictResolution) (*StartPlanResult, error)
	// UpdateExerciseStatus sets one exercise's status on the given day and
	// recomputes the completed count. Returns (nil, nil) when no entry
	// exists for the day.
	UpdateExerciseStatus(ctx context.Context, ownerUID, dateKey, exerciseID string, status domain.ExerciseStatus) (*domain.DailyEntry, error)
	SessionStats(ctx context.Context, ownerUID string) (*SessionStats, error)
}

// planSnapshot is the plan content captured at start time: identity plus the
// exercise summaries that will seed the session and day entries.
type planSnapshot struct {
	PlanType  domain.PlanType
	PlanID    string
	PlanName  string
	Duration  string // human duration string, e.g. "4 weeks"
	Exercises []domain.ExerciseSummary
}

// trackingService implements the TrackingService interface.
type trackingService struct {
	dailyLogRepo  repository.DailyLogRepository
	routineRepo   repository.RoutineRepository
	generatedRepo repository.RoutineRepository
	linkRepo      repository.PatientLinkRepository
}

// NewTrackingService creates a new instance of trackingService.
func NewTrackingService(
	dailyLogRepo repository.DailyLogRepository,
	routineRepo repository.RoutineRepository,
	generatedRepo repository.RoutineRepository,
	linkRepo repository.PatientLinkRepository,
) TrackingService {
	return &trackingService{
		dailyLogRepo:  dailyLogRepo,
		routineRepo:   routineRepo,
		generatedRepo: generatedRepo,
		linkRepo:      linkRepo,
	}
}

// ActiveSession returns the user's session record without checking whether
// its window has lapsed; callers decide what an expired window means.
func (s *trackingService) ActiveSession(ctx context.Context, ownerUID string) (*domain.PlanSession, error) {
	session, err := s.dailyLogRepo.GetSession(ctx, ownerUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return session, nil
}

// Today is the read-only dashboard reconciliation.
func (s *trackingService) Today(ctx context.Context, ownerUID string) (*domain.DailyEntry, error) {
	now := time.Now()
	dateKey := schedule.DateKey(now)

	entry, err := s.dailyLogRepo.GetEntry(ctx, ownerUID, dateKey)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	session, err := s.dailyLogRepo.GetSession(ctx, ownerUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil // no session, empty day
		}
		return nil, err
	}
	if !session.Active(now) {
		return nil, nil // lapsed window, no silent rollover
	}

	return s.ensureTodayEntry(ctx, ownerUID, planSnapshot{
		PlanType:  session.PlanType,
		PlanID:    session.PlanID,
		PlanName:  session.PlanName,
		Exercises: session.Exercises,
	})
}

// StartPlan begins (or resumes) tracking the referenced plan today.
func (s *trackingService) StartPlan(ctx context.Context, ownerUID string, ref PlanRef, resolution ConflictResolution) (*StartPlanResult, error) {
	snap, err := s.loadPlan(ctx, ref)
	if err != nil {
		return nil, err
	}

	dateKey := schedule.DateKey(time.Now())
	entry, err := s.dailyLogRepo.GetEntry(ctx, ownerUID, dateKey)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Nothing tracked today: resume the remaining window when one exists,
	// then materialize today from the plan.
	if entry == nil {
		session, err := s.startOrReplaceSession(ctx, ownerUID, snap, true)
		if err != nil {
			return nil, err
		}
		entry, err = s.ensureTodayEntry(ctx, ownerUID, snap)
		if err != nil {
			return nil, err
		}
		return &StartPlanResult{Session: session, Entry: entry}, nil
	}

	// Today already tracks this very plan: idempotent re-entry.
	if entry.MatchesPlan(snap.PlanType, snap.PlanID) {
		session, err := s.dailyLogRepo.GetSession(ctx, ownerUID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return &StartPlanResult{Session: session, Entry: entry}, nil
	}

	// Today's entry came from a different plan: a human decides.
	switch resolution {
	case ResolutionKeepCurrent:
		// Keep today untouched and re-synchronize the session record to the
		// plan already on today, preserving the remaining window.
		session, err := s.startOrReplaceSession(ctx, ownerUID, planSnapshot{
			PlanType:  entry.PlanType,
			PlanID:    entry.PlanID,
			PlanName:  entry.PlanName,
			Exercises: entry.Exercises,
		}, true)
		if err != nil {
			return nil, err
		}
		return &StartPlanResult{Session: session, Entry: entry}, nil

	case ResolutionStartFresh:
		session, err := s.startOrReplaceSession(ctx, ownerUID, snap, false)
		if err != nil {
			return nil, err
		}
		entry, err = s.replaceTodayEntry(ctx, ownerUID, snap)
		if err != nil {
			return nil, err
		}
		return &StartPlanResult{Session: session, Entry: entry}, nil

	default:
		return nil, ErrPlanConflict
	}
}

// UpdateExerciseStatus transitions one exercise's status for a day.
func (s *trackingService) UpdateExerciseStatus(ctx context.Context, ownerUID, dateKey, exerciseID string, status domain.ExerciseStatus) (*domain.DailyEntry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	entry, err := s.dailyLogRepo.GetEntry(ctx, ownerUID, dateKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil // nothing tracked that day, nothing to update
		}
		return nil, err
	}
	if _, ok := entry.Statuses[exerciseID]; !ok {
		return nil, ErrExerciseNotInEntry
	}

	entry.Statuses[exerciseID] = status
	// Recompute from the full map rather than incrementing; the stored
	// counter must always equal the number of completed statuses.
	entry.CompletedCount = domain.CountCompleted(entry.Statuses)

	if err := s.dailyLogRepo.UpdateEntryStatuses(ctx, ownerUID, dateKey, entry.Statuses, entry.CompletedCount); err != nil {
		return nil, err
	}

	// Best effort: surface today's percentage to any watching doctor.
	if s.linkRepo != nil && entry.TotalExercises > 0 {
		percent := roundPercent(entry.CompletedCount, entry.TotalExercises)
		if err := s.linkRepo.SetProgressForPatient(ctx, ownerUID, percent, time.Now().UTC()); err != nil {
			log.Warnf("failed to update link progress for %s: %v", ownerUID, err)
		}
	}

	return entry, nil
}

// SessionStats rolls up completion, consistency and the trailing week.
func (s *trackingService) SessionStats(ctx context.Context, ownerUID string) (*SessionStats, error) {
	session, err := s.ActiveSession(ctx, ownerUID)
	if err != nil {
		return nil, err
	}

	entries, err := s.dailyLogRepo.ListEntriesByPlan(ctx, ownerUID, session.PlanType, session.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	const oneDay = 24 * time.Hour
	elapsed := schedule.ElapsedDays(session.StartDate, session.EndDate, now, session.DurationDays)

	currentWeek := int(now.Sub(session.StartDate).Hours()/24)/7 + 1
	if currentWeek < 1 {
		currentWeek = 1
	}
	totalWeeks := (session.DurationDays + 6) / 7
	if totalWeeks < 1 {
		totalWeeks = 1
	}

	stats := &SessionStats{
		ElapsedDays: elapsed,
		CurrentWeek: currentWeek,
		TotalWeeks:  totalWeeks,
	}

	totalDone, totalExercises := 0, 0
	byDate := make(map[string]*domain.DailyEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		totalDone += e.CompletedCount
		totalExercises += e.TotalExercises
		byDate[e.DateKey] = e
	}
	if totalExercises > 0 {
		stats.CompletionRate = roundPercent(totalDone, totalExercises)
	}

	// Consistency: elapsed days with at least one completed exercise.
	for i := 0; i < elapsed; i++ {
		dateKey := schedule.DateKey(session.StartDate.Add(time.Duration(i) * oneDay))
		if e, ok := byDate[dateKey]; ok && e.CompletedCount > 0 {
			stats.DaysWithActivity++
		}
	}
	if elapsed > 0 {
		stats.ConsistencyPct = roundPercent(stats.DaysWithActivity, elapsed)
	}

	// Trailing week bars ending today; days without an entry render as 0.
	base := schedule.StartOfDay(now)
	for i := 6; i >= 0; i-- {
		day := base.Add(-time.Duration(i) * oneDay)
		bar := DayBar{Day: day.Weekday().String()[:3]}
		if e, ok := byDate[schedule.DateKey(day)]; ok && e.TotalExercises > 0 {
			bar.Value = roundPercent(e.CompletedCount, e.TotalExercises)
			bar.Done = e.CompletedCount == e.TotalExercises
		}
		stats.Week = append(stats.Week, bar)
	}

	return stats, nil
}

// === internals ===

// loadPlan fetches the referenced plan's latest content and snapshots it.
func (s *trackingService) loadPlan(ctx context.Context, ref PlanRef) (planSnapshot, error) {
	var repo repository.RoutineRepository
	switch ref.Type {
	case domain.PlanTypeRoutine:
		repo = s.routineRepo
	case domain.PlanTypeGenerated:
		repo = s.generatedRepo
	default:
		return planSnapshot{}, ErrPlanNotFound
	}

	planID, err := primitive.ObjectIDFromHex(ref.ID)
	if err != nil {
		return planSnapshot{}, ErrPlanNotFound
	}

	routine, err := repo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return planSnapshot{}, ErrPlanNotFound
		}
		return planSnapshot{}, err
	}

	return planSnapshot{
		PlanType:  ref.Type,
		PlanID:    ref.ID,
		PlanName:  routine.Name,
		Duration:  routine.Duration,
		Exercises: domain.Summaries(routine.Exercises),
	}, nil
}

// startOrReplaceSession fully replaces the user's session document with the
// given plan identity and snapshot. When keepRemaining is true and the
// existing window has not yet lapsed, its end date is carried over;
// otherwise a fresh window opens at today's local midnight.
func (s *trackingService) startOrReplaceSession(ctx context.Context, ownerUID string, snap planSnapshot, keepRemaining bool) (*domain.PlanSession, error) {
	now := time.Now()

	var endDate time.Time
	if keepRemaining {
		existing, err := s.dailyLogRepo.GetSession(ctx, ownerUID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.EndDate.After(now) {
			endDate = existing.EndDate
		}
	}

	durationDays := schedule.ParseDurationDays(snap.Duration, schedule.DefaultDurationDays)
	startDate := schedule.StartOfDay(now)
	if endDate.IsZero() {
		endDate = schedule.WindowEnd(startDate, durationDays)
	}

	session := &domain.PlanSession{
		OwnerUID:     ownerUID,
		PlanType:     snap.PlanType,
		PlanID:       snap.PlanID,
		PlanName:     snap.PlanName,
		DurationDays: durationDays,
		StartDate:    startDate,
		EndDate:      endDate,
		Exercises:    snap.Exercises,
	}
	if err := s.dailyLogRepo.PutSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ensureTodayEntry returns today's entry, creating it from the snapshot only
// when absent. Existing entries are returned unchanged.
func (s *trackingService) ensureTodayEntry(ctx context.Context, ownerUID string, snap planSnapshot) (*domain.DailyEntry, error) {
	dateKey := schedule.DateKey(time.Now())

	existing, err := s.dailyLogRepo.GetEntry(ctx, ownerUID, dateKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	entry := newEntry(ownerUID, dateKey, snap)
	if err := s.dailyLogRepo.PutEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// replaceTodayEntry unconditionally overwrites today's entry with a fresh
// snapshot, discarding any progress already made.
func (s *trackingService) replaceTodayEntry(ctx context.Context, ownerUID string, snap planSnapshot) (*domain.DailyEntry, error) {
	entry := newEntry(ownerUID, schedule.DateKey(time.Now()), snap)
	if err := s.dailyLogRepo.PutEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func newEntry(ownerUID, dateKey string, snap planSnapshot) *domain.DailyEntry {
	statuses := make(map[string]domain.ExerciseStatus, len(snap.Exercises))
	for _, e := range snap.Exercises {
		statuses[e.ID] = domain.StatusPending
	}
	return &domain.DailyEntry{
		OwnerUID:       ownerUID,
		DateKey:        dateKey,
		PlanType:       snap.PlanType,
		PlanID:         snap.PlanID,
		PlanName:       snap.PlanName,
		Exercises:      snap.Exercises,
		Statuses:       statuses,
		CompletedCount: 0,
		TotalExercises: len(snap.Exercises),
	}
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
