package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PlanRequest describes what the patient needs a plan for.
type PlanRequest struct {
	Condition string
	Goal      string
	Weeks     int
	UserType  domain.UserType
}

// PlannerService generates recovery plans through a chat-completion API and
// stores them in the generatedPlans collection.
type PlannerService interface {
	GeneratePlan(ctx context.Context, ownerUID string, req PlanRequest) (*domain.Routine, error)
}

// plannerService implements the PlannerService interface.
type plannerService struct {
	generatedRepo repository.RoutineRepository
	httpClient    *http.Client
	endpoint      string
	apiKey        string
	model         string
}

// NewPlannerService creates a new instance of plannerService.
func NewPlannerService(
	generatedRepo repository.RoutineRepository,
	httpClient *http.Client,
	endpoint, apiKey, model string,
) PlannerService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &plannerService{
		generatedRepo: generatedRepo,
		httpClient:    httpClient,
		endpoint:      endpoint,
		apiKey:        apiKey,
		model:         model,
	}
}

// --- wire types for the completion API ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// generatedPlanContent is the strict-JSON shape the prompt asks the model for.
type generatedPlanContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Exercises   []struct {
		Name     string `json:"name"`
		Sets     *int   `json:"sets,omitempty"`
		Reps     *int   `json:"reps,omitempty"`
		Duration string `json:"duration,omitempty"`
		Rest     string `json:"rest,omitempty"`
	} `json:"exercises"`
	Summary string `json:"summary"`
}

const plannerSystemPrompt = "You are a physical therapy planning assistant. " +
	"Respond with a single JSON object containing the fields: " +
	"name, description, duration, exercises (array of {name, sets, reps, duration, rest}), summary. " +
	"No prose outside the JSON."

// GeneratePlan sends one completion request, normalizes the result into a
// valid plan shape and stores it for the user.
func (s *plannerService) GeneratePlan(ctx context.Context, ownerUID string, req PlanRequest) (*domain.Routine, error) {
	content, err := s.requestCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	plan := normalizePlanContent(content, req)
	plan.OwnerUID = ownerUID

	planID, err := s.generatedRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// requestCompletion performs the single HTTP POST against the completion
// endpoint. A non-success status is a failure; unparseable plan JSON in the
// message content degrades to an empty object, which normalization turns
// into a minimal valid plan rather than failing the action.
func (s *plannerService) requestCompletion(ctx context.Context, req PlanRequest) (generatedPlanContent, error) {
	var content generatedPlanContent

	body := chatCompletionRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: plannerSystemPrompt},
			{Role: "user", Content: buildPlannerPrompt(req)},
		},
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return content, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return content, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return content, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return content, fmt.Errorf("completion request failed with status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return content, fmt.Errorf("read completion response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return content, fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return content, fmt.Errorf("completion response contained no choices")
	}

	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &content); err != nil {
		log.Warnf("unparseable plan JSON from completion API, falling back to empty plan: %v", err)
		return generatedPlanContent{}, nil
	}
	return content, nil
}

func buildPlannerPrompt(req PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a recovery exercise plan for the condition: %s.", req.Condition)
	if req.Goal != "" {
		fmt.Fprintf(&b, " Goal: %s.", req.Goal)
	}
	if req.Weeks > 0 {
		fmt.Fprintf(&b, " The plan should last %d weeks.", req.Weeks)
	}
	if req.UserType != "" && req.UserType != domain.UserTypeDoctor {
		fmt.Fprintf(&b, " The patient is a %s user.", req.UserType)
	}
	return b.String()
}

// normalizePlanContent turns whatever came back (possibly the empty-object
// fallback) into a self-consistent routine document.
func normalizePlanContent(content generatedPlanContent, req PlanRequest) *domain.Routine {
	name := strings.TrimSpace(content.Name)
	if name == "" {
		name = "Recovery Plan"
		if req.Condition != "" {
			name = req.Condition + " Recovery Plan"
		}
	}
	description := strings.TrimSpace(content.Description)
	if description == "" {
		description = strings.TrimSpace(content.Summary)
	}
	if description == "" {
		description = "AI-generated recovery plan"
	}
	duration := strings.TrimSpace(content.Duration)
	if duration == "" {
		if req.Weeks > 0 {
			duration = fmt.Sprintf("%d weeks", req.Weeks)
		} else {
			duration = "4 weeks"
		}
	}

	exercises := make([]domain.Exercise, 0, len(content.Exercises))
	for _, e := range content.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		exercises = append(exercises, domain.Exercise{
			ID:       uuid.NewString(),
			Name:     e.Name,
			Sets:     e.Sets,
			Reps:     e.Reps,
			Duration: e.Duration,
			Rest:     e.Rest,
		})
	}

	return &domain.Routine{
		Name:        name,
		Description: description,
		Duration:    duration,
		Visibility:  domain.VisibilityPrivate,
		Exercises:   exercises,
		Summary:     &domain.RoutineSummary{TotalExercises: len(exercises)},
	}
}
