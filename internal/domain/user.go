package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// UserType categorizes patients for plan generation and UI defaults.
type UserType string

const (
	UserTypeAthlete UserType = "athlete"
	UserTypeElderly UserType = "elderly"
	UserTypeGeneral UserType = "general"
	UserTypeDoctor  UserType = "doctor"
)

// User represents a user in the system (either a Patient or a Doctor).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`

	// Onboarding profile
	FirstName string   `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string   `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Gender    string   `bson:"gender,omitempty" json:"gender,omitempty"` // "male", "female", "other"
	Age       int      `bson:"age,omitempty" json:"age,omitempty"`
	UserType  UserType `bson:"userType,omitempty" json:"userType,omitempty"`
	Onboarded bool     `bson:"onboarded" json:"onboarded"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

// FullName joins first and last name, trimming when either is empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
