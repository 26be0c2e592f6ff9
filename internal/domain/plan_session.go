package domain

import "time"

// PlanSession is the single active multi-day plan assignment for a user.
// It lives in the dailyLog collection under a fixed document id per user,
// so at most one session can exist at a time by construction.
type PlanSession struct {
	ID           string            `bson:"_id" json:"id"` // session_{uid}
	OwnerUID     string            `bson:"ownerUid" json:"ownerUid"`
	PlanType     PlanType          `bson:"planType" json:"planType"`
	PlanID       string            `bson:"planId" json:"planId"`
	PlanName     string            `bson:"planName,omitempty" json:"planName,omitempty"`
	DurationDays int               `bson:"durationDays" json:"durationDays"`
	StartDate    time.Time         `bson:"startDate" json:"startDate"`
	EndDate      time.Time         `bson:"endDate" json:"endDate"`
	Exercises    []ExerciseSummary `bson:"exercises" json:"exercises"` // snapshot at start/replace time
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// SessionDocID builds the fixed dailyLog document id for a user's session.
func SessionDocID(ownerUID string) string {
	return "session_" + ownerUID
}

// Active reports whether the session window still covers the given instant.
func (s *PlanSession) Active(now time.Time) bool {
	return s.EndDate.After(now)
}
