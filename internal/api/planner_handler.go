package api

import (
	"fmt"
	"net/http"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PlannerHandler exposes AI plan generation.
type PlannerHandler struct {
	plannerService service.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(plannerService service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

type GeneratePlanRequest struct {
	Condition string `json:"condition" binding:"required"`
	Goal      string `json:"goal"`
	Weeks     int    `json:"weeks" binding:"omitempty,gte=1,lte=52"`
	UserType  string `json:"userType" binding:"omitempty,oneof=athlete elderly general"`
}

// GeneratePlan asks the completion API for a recovery plan tailored to the
// request and stores the result in the user's generated plans.
func (h *PlannerHandler) GeneratePlan(c *gin.Context) {
	ownerUID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.plannerService.GeneratePlan(c.Request.Context(), ownerUID, service.PlanRequest{
		Condition: req.Condition,
		Goal:      req.Goal,
		Weeks:     req.Weeks,
		UserType:  domain.UserType(req.UserType),
	})
	if err != nil {
		// Upstream API failures surface as 502: the request was fine, the
		// generation backend was not.
		abortWithError(c, http.StatusBadGateway, "Plan generation failed")
		return
	}

	c.JSON(http.StatusCreated, plan)
}
