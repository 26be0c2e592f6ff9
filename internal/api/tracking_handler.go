package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// dateKeyPattern guards the :date path segment. Keys are local-calendar
// YYYY-MM-DD strings, the same shape used inside entry document ids.
var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TrackingHandler exposes the plan session and daily log tracker.
type TrackingHandler struct {
	trackingService service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// --- Request/Response Structs ---

type StartPlanRequest struct {
	PlanType string `json:"planType" binding:"required,oneof=routine generated"`
	PlanID   string `json:"planId" binding:"required"`
	// Resolution is only needed when a different plan is already tracked
	// today. The first attempt may omit it; a 409 response means the client
	// must retry with "keep_current" or "start_fresh".
	Resolution string `json:"resolution" binding:"omitempty,oneof=keep_current start_fresh"`
}

type UpdateStatusRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=pending in_progress completed"`
}

// TodayResponse wraps the (possibly absent) entry so an empty day is an
// explicit 200, not a 404.
type TodayResponse struct {
	Entry *domain.DailyEntry `json:"entry"`
}

// --- Handler Methods ---

// GetSession returns the user's active plan session, 404 when none exists
// or the window has lapsed.
func (h *TrackingHandler) GetSession(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	session, err := h.trackingService.ActiveSession(c.Request.Context(), ownerUID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch session")
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetToday returns today's entry, materializing it from the active session
// when absent. Entry is null when no session is active.
func (h *TrackingHandler) GetToday(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	entry, err := h.trackingService.Today(c.Request.Context(), ownerUID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load today's log")
		return
	}

	c.JSON(http.StatusOK, TodayResponse{Entry: entry})
}

// StartPlan begins (or resumes) tracking a plan. Responds 409 when a
// different plan already owns today's entry and no resolution was given.
func (h *TrackingHandler) StartPlan(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req StartPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.trackingService.StartPlan(c.Request.Context(), ownerUID,
		service.PlanRef{Type: domain.PlanType(req.PlanType), ID: req.PlanID},
		service.ConflictResolution(req.Resolution))
	if err != nil {
		if errors.Is(err, service.ErrPlanConflict) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to start plan")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateStatus sets one exercise's status on the given day's entry and
// recomputes the completed count. Responds 204 when no entry exists for
// that day (nothing to update, not an error).
func (h *TrackingHandler) UpdateStatus(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	dateKey := c.Param("date")
	if !dateKeyPattern.MatchString(dateKey) {
		abortWithError(c, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entry, err := h.trackingService.UpdateExerciseStatus(c.Request.Context(), ownerUID,
		dateKey, req.ExerciseID, domain.ExerciseStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrExerciseNotInEntry) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update status")
		}
		return
	}

	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetStats returns the progress rollup for the active session.
func (h *TrackingHandler) GetStats(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	stats, err := h.trackingService.SessionStats(c.Request.Context(), ownerUID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}
