package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LinkStatus type for the doctor/patient invite lifecycle
type LinkStatus string

const (
	LinkInvited  LinkStatus = "invited"  // doctor sent the invite, no patient linked yet
	LinkPending  LinkStatus = "pending"  // patient saw the invite, not decided
	LinkActive   LinkStatus = "active"   // patient accepted
	LinkDeclined LinkStatus = "declined" // patient declined
)

// PatientProfile is the denormalized slice of a patient's user document
// embedded into link listings for the doctor's patient screen.
type PatientProfile struct {
	FirstName string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
}

// PatientLink connects a Doctor to a Patient, created by an email invite.
type PatientLink struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorUID       string             `bson:"doctorUid" json:"doctorUid"`
	DoctorName      string             `bson:"doctorName,omitempty" json:"doctorName,omitempty"`
	PatientUID      string             `bson:"patientUid,omitempty" json:"patientUid,omitempty"`
	InvitedEmail    string             `bson:"invitedEmail" json:"invitedEmail"`
	PatientName     string             `bson:"patientName,omitempty" json:"patientName,omitempty"`
	PatientProfile  *PatientProfile    `bson:"patientProfile,omitempty" json:"patientProfile,omitempty"`
	Status          LinkStatus         `bson:"status" json:"status"`
	ProgressPercent *int               `bson:"progressPercent,omitempty" json:"progressPercent,omitempty"`
	LastProgressAt  *time.Time         `bson:"lastProgressAt,omitempty" json:"lastProgressAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
