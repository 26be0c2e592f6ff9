package api

import (
	"errors"
	"fmt"
	"net/http"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineHandler serves user-authored routines and AI-generated plans. Both
// collections share the same document shape and the same service surface, so
// one handler backs the two route groups.
type RoutineHandler struct {
	routineService service.RoutineService
	planType       domain.PlanType
}

// NewRoutineHandler creates a handler over the routines collection.
func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService, planType: domain.PlanTypeRoutine}
}

// NewGeneratedPlanHandler creates a handler over the generatedPlans collection.
func NewGeneratedPlanHandler(generatedService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: generatedService, planType: domain.PlanTypeGenerated}
}

// --- Request/Response Structs ---

type ExerciseInput struct {
	ID       string `json:"id"` // assigned server-side when empty
	Name     string `json:"name" binding:"required"`
	Sets     *int   `json:"sets" binding:"omitempty,gte=1"`
	Reps     *int   `json:"reps" binding:"omitempty,gte=1"`
	Duration string `json:"duration"`
	Rest     string `json:"rest"`
	Category string `json:"category"`
	BodyPart string `json:"bodyPart"`
}

type RoutineRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Duration    string          `json:"duration"` // e.g., "4 weeks"
	Visibility  string          `json:"visibility" binding:"omitempty,oneof=Private Public"`
	Exercises   []ExerciseInput `json:"exercises" binding:"required,min=1,dive"`
}

func (r RoutineRequest) toInput() service.RoutineInput {
	exercises := make([]domain.Exercise, len(r.Exercises))
	for i, e := range r.Exercises {
		exercises[i] = domain.Exercise{
			ID:       e.ID,
			Name:     e.Name,
			Sets:     e.Sets,
			Reps:     e.Reps,
			Duration: e.Duration,
			Rest:     e.Rest,
			Category: e.Category,
			BodyPart: e.BodyPart,
		}
	}
	return service.RoutineInput{
		Name:        r.Name,
		Description: r.Description,
		Duration:    r.Duration,
		Visibility:  domain.RoutineVisibility(r.Visibility),
		Exercises:   exercises,
	}
}

// --- Handler Methods ---

// Create inserts a new plan owned by the authenticated user.
func (h *RoutineHandler) Create(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.routineService.Create(c.Request.Context(), ownerUID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrRoutineInvalid) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create plan")
		}
		return
	}

	c.JSON(http.StatusCreated, routine)
}

// List returns all plans owned by the authenticated user.
func (h *RoutineHandler) List(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	routines, err := h.routineService.ListForOwner(c.Request.Context(), ownerUID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plans")
		return
	}

	c.JSON(http.StatusOK, routines)
}

// Get returns a single plan by id. Private plans are only visible to their
// owner; public ones to any authenticated user.
func (h *RoutineHandler) Get(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	routineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	routine, err := h.routineService.Get(c.Request.Context(), routineID)
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch plan")
		}
		return
	}

	if routine.Visibility != domain.VisibilityPublic && routine.OwnerUID != ownerUID {
		abortWithError(c, http.StatusNotFound, service.ErrRoutineNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, routine)
}

// Update overwrites a plan's content. Only the owner may update.
func (h *RoutineHandler) Update(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	routineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var req RoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	routine, err := h.routineService.Update(c.Request.Context(), ownerUID, routineID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrRoutineNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrRoutineAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrRoutineInvalid) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update plan")
		}
		return
	}

	c.JSON(http.StatusOK, routine)
}
