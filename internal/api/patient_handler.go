package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientHandler serves both sides of the doctor/patient link: doctors
// invite and list patients, patients see and answer their invites.
type PatientHandler struct {
	patientService service.PatientService
	authService    service.AuthService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patientService service.PatientService, authService service.AuthService) *PatientHandler {
	return &PatientHandler{patientService: patientService, authService: authService}
}

// --- Request/Response Structs ---

type InvitePatientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Doctor Methods ---

// InvitePatient creates an invite link addressed to the given email.
func (h *PatientHandler) InvitePatient(c *gin.Context) {
	doctorUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req InvitePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	link, err := h.patientService.InvitePatient(c.Request.Context(), doctorUID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailRequired) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to invite patient")
		}
		return
	}

	c.JSON(http.StatusCreated, link)
}

// ListPatients returns the doctor's patient links with profiles and latest
// progress.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	doctorUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	links, err := h.patientService.ListPatients(c.Request.Context(), doctorUID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list patients")
		return
	}

	c.JSON(http.StatusOK, links)
}

// --- Patient Methods ---

// PendingInvites lists invites addressed to the authenticated patient that
// still await a decision.
func (h *PatientHandler) PendingInvites(c *gin.Context) {
	patientUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	patientEmail, err := getUserEmailFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user email from token")
		return
	}

	invites, err := h.patientService.PendingInvites(c.Request.Context(), patientUID, patientEmail)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list invites")
		return
	}

	c.JSON(http.StatusOK, invites)
}

// AcceptInvite links the authenticated patient to the inviting doctor.
func (h *PatientHandler) AcceptInvite(c *gin.Context) {
	patientUID, err := requireUserObjectID(c)
	if err != nil {
		return
	}

	inviteID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid invite ID format")
		return
	}

	// Patient name on the link comes from the onboarded profile; absence is
	// fine, the doctor list falls back to the invited email.
	patientName := ""
	if user, uerr := h.authService.GetUser(c.Request.Context(), patientUID); uerr == nil {
		patientName = strings.TrimSpace(user.FullName())
	}

	link, err := h.patientService.AcceptInvite(c.Request.Context(), patientUID, inviteID, patientName)
	if err != nil {
		h.abortInviteError(c, err, "Failed to accept invite")
		return
	}

	c.JSON(http.StatusOK, link)
}

// DeclineInvite marks the invite declined.
func (h *PatientHandler) DeclineInvite(c *gin.Context) {
	patientUID, err := requireUserObjectID(c)
	if err != nil {
		return
	}

	inviteID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid invite ID format")
		return
	}

	if err := h.patientService.DeclineInvite(c.Request.Context(), patientUID, inviteID); err != nil {
		h.abortInviteError(c, err, "Failed to decline invite")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) abortInviteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInviteNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInviteWrongPatient),
		errors.Is(err, service.ErrInviteWrongEmail):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInviteDeclined),
		errors.Is(err, service.ErrInviteAlreadyAccepted):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
