package service

import (
	"context"
	"errors"
	"strings"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrEmailRequired         = errors.New("email is required")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteWrongPatient    = errors.New("invite already linked to another patient")
	ErrInviteWrongEmail      = errors.New("this invite is for a different email")
	ErrInviteDeclined        = errors.New("invite was declined")
	ErrInviteAlreadyAccepted = errors.New("invite already accepted")
)

// PatientService manages the doctor side of the app: inviting patients by
// email and listing them with their linked profiles and latest progress.
type PatientService interface {
	InvitePatient(ctx context.Context, doctorUID, email string) (*domain.PatientLink, error)
	ListPatients(ctx context.Context, doctorUID string) ([]domain.PatientLink, error)
	// PendingInvites lists invites addressed to the patient that still await
	// a decision.
	PendingInvites(ctx context.Context, patientUID, patientEmail string) ([]domain.PatientLink, error)
	AcceptInvite(ctx context.Context, patientUID primitive.ObjectID, inviteID primitive.ObjectID, patientName string) (*domain.PatientLink, error)
	DeclineInvite(ctx context.Context, patientUID primitive.ObjectID, inviteID primitive.ObjectID) error
}

// patientService implements the PatientService interface.
type patientService struct {
	linkRepo repository.PatientLinkRepository
	userRepo repository.UserRepository
}

// NewPatientService creates a new instance of patientService.
func NewPatientService(linkRepo repository.PatientLinkRepository, userRepo repository.UserRepository) PatientService {
	return &patientService{
		linkRepo: linkRepo,
		userRepo: userRepo,
	}
}

// InvitePatient creates an invite link addressed to an email.
func (s *patientService) InvitePatient(ctx context.Context, doctorUID, email string) (*domain.PatientLink, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return nil, ErrEmailRequired
	}

	link := &domain.PatientLink{
		DoctorUID:    doctorUID,
		InvitedEmail: trimmed,
		Status:       domain.LinkInvited,
	}
	if doctor, err := s.doctorByUID(ctx, doctorUID); err == nil {
		link.DoctorName = doctor.FullName()
	}

	linkID, err := s.linkRepo.Create(ctx, link)
	if err != nil {
		return nil, err
	}
	link.ID = linkID
	return link, nil
}

// ListPatients returns the doctor's links enriched with patient profiles.
func (s *patientService) ListPatients(ctx context.Context, doctorUID string) ([]domain.PatientLink, error) {
	links, err := s.linkRepo.GetByDoctorUID(ctx, doctorUID)
	if err != nil {
		return nil, err
	}

	for i := range links {
		link := &links[i]
		if link.PatientUID == "" {
			continue
		}
		patientID, err := primitive.ObjectIDFromHex(link.PatientUID)
		if err != nil {
			continue
		}
		patient, err := s.userRepo.GetByID(ctx, patientID)
		if err != nil {
			// Profile enrichment is best effort; the link itself still renders.
			if !errors.Is(err, repository.ErrNotFound) {
				log.Warnf("failed to load profile for patient %s: %v", link.PatientUID, err)
			}
			continue
		}
		link.PatientProfile = &domain.PatientProfile{
			FirstName: patient.FirstName,
			LastName:  patient.LastName,
			Email:     patient.Email,
		}
		if link.PatientName == "" && patient.FullName() != "" {
			link.PatientName = patient.FullName()
		}
	}

	return links, nil
}

// PendingInvites finds undecided invites for a patient by email or uid.
func (s *patientService) PendingInvites(ctx context.Context, patientUID, patientEmail string) ([]domain.PatientLink, error) {
	email := strings.ToLower(strings.TrimSpace(patientEmail))
	links, err := s.linkRepo.GetInvitesForPatient(ctx, email, patientUID)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.PatientLink, 0, len(links))
	for _, link := range links {
		if link.Status == domain.LinkInvited || link.Status == domain.LinkPending {
			pending = append(pending, link)
		}
	}
	return pending, nil
}

// AcceptInvite binds the invite to the patient and activates the link.
func (s *patientService) AcceptInvite(ctx context.Context, patientID primitive.ObjectID, inviteID primitive.ObjectID, patientName string) (*domain.PatientLink, error) {
	patient, link, err := s.requireInviteForPatient(ctx, patientID, inviteID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(patientName)
	if name == "" {
		name = patient.FullName()
	}
	if name == "" {
		name = patient.Email
	}

	link.PatientUID = patient.ID.Hex()
	link.PatientName = name
	link.InvitedEmail = strings.ToLower(patient.Email)
	link.Status = domain.LinkActive

	if err := s.linkRepo.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// DeclineInvite marks the invite declined; accepted invites stay accepted.
func (s *patientService) DeclineInvite(ctx context.Context, patientID primitive.ObjectID, inviteID primitive.ObjectID) error {
	patient, link, err := s.requireInviteForPatient(ctx, patientID, inviteID)
	if err != nil {
		return err
	}
	if link.Status == domain.LinkActive {
		return ErrInviteAlreadyAccepted
	}

	link.PatientUID = patient.ID.Hex()
	link.Status = domain.LinkDeclined
	return s.linkRepo.Update(ctx, link)
}

// requireInviteForPatient loads the invite and verifies it is addressed to
// this patient: not bound to someone else, not for a different email, and
// not already declined.
func (s *patientService) requireInviteForPatient(ctx context.Context, patientID primitive.ObjectID, inviteID primitive.ObjectID) (*domain.User, *domain.PatientLink, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	link, err := s.linkRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInviteNotFound
		}
		return nil, nil, err
	}

	email := strings.ToLower(strings.TrimSpace(patient.Email))
	if link.PatientUID != "" && link.PatientUID != patient.ID.Hex() {
		return nil, nil, ErrInviteWrongPatient
	}
	if link.InvitedEmail != "" && email != "" && link.InvitedEmail != email {
		return nil, nil, ErrInviteWrongEmail
	}
	if link.Status == domain.LinkDeclined {
		return nil, nil, ErrInviteDeclined
	}
	return patient, link, nil
}

func (s *patientService) doctorByUID(ctx context.Context, doctorUID string) (*domain.User, error) {
	doctorID, err := primitive.ObjectIDFromHex(doctorUID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, doctorID)
}
