package service

import (
	"context"
	"fmt"

	"cardionote-be/internal/apperror"
	"cardionote-be/internal/dto"
	"cardionote-be/internal/entity"
	"cardionote-be/internal/store"
	"cardionote-be/pkg/analysis"
	"cardionote-be/pkg/ecgsubmit"

	"github.com/google/uuid"
)

type IECGService interface {
	Analyze(ctx context.Context, userID uuid.UUID, upload ecgsubmit.Upload) (*dto.AnalyzeECGResponse, error)
	Interpret(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.InterpretECGResponse, error)
	PlanAction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.PlanActionECGResponse, error)
	List(ctx context.Context, userID uuid.UUID) (*dto.ECGResultListResponse, error)
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	Select(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	Cleanup(userID uuid.UUID)
}

// ecgService drives the three-stage analysis pipeline: submit the image
// for raw analysis, then interpret, then plan. Each later stage requires
// the previous stage's output on the stored result.
type ecgService struct {
	submitClient *ecgsubmit.Client
	assist       IAssistService
	stores       *store.Manager[entity.ECGResult]
	renderer     *analysis.Renderer
}

func NewECGService(submitClient *ecgsubmit.Client, assist IAssistService, stores *store.Manager[entity.ECGResult]) IECGService {
	return &ecgService{
		submitClient: submitClient,
		assist:       assist,
		stores:       stores,
		renderer:     analysis.NewRenderer(),
	}
}

func (c *ecgService) Analyze(ctx context.Context, userID uuid.UUID, upload ecgsubmit.Upload) (*dto.AnalyzeECGResponse, error) {
	rawAnalysis, err := c.submitClient.Submit(ctx, upload)
	if err != nil {
		return nil, err
	}

	id, err := c.stores.For(userID).Create(ctx, map[string]interface{}{
		"raw_analysis": rawAnalysis,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AnalyzeECGResponse{
		Id:          id,
		RawAnalysis: rawAnalysis,
		RenderedRaw: c.renderer.Render(rawAnalysis),
	}, nil
}

func (c *ecgService) Interpret(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.InterpretECGResponse, error) {
	result, err := c.findResult(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if result.RawAnalysis == "" {
		return nil, apperror.NewValidationError("result has no raw analysis to interpret")
	}

	prompt := fmt.Sprintf(
		"You are a cardiologist. Interpret the following ECG analysis for a clinician. Be concise and flag anything abnormal.\n\n%s",
		result.RawAnalysis,
	)
	interpretation, err := c.assist.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := c.stores.For(userID).Update(ctx, id, map[string]interface{}{
		"interpretation": interpretation,
	}); err != nil {
		return nil, err
	}

	return &dto.InterpretECGResponse{Id: id, Interpretation: interpretation}, nil
}

func (c *ecgService) PlanAction(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.PlanActionECGResponse, error) {
	result, err := c.findResult(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	// Planning builds on the interpretation stage; running it first
	// would plan against nothing.
	if result.Interpretation == nil || *result.Interpretation == "" {
		return nil, apperror.NewValidationError("result must be interpreted before planning an action")
	}

	prompt := fmt.Sprintf(
		"Based on this ECG interpretation, propose a prioritized clinical action plan.\n\nInterpretation:\n%s",
		*result.Interpretation,
	)
	plan, err := c.assist.ChatCompletion(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := c.stores.For(userID).Update(ctx, id, map[string]interface{}{
		"action_plan": plan,
	}); err != nil {
		return nil, err
	}

	return &dto.PlanActionECGResponse{Id: id, ActionPlan: plan}, nil
}

func (c *ecgService) List(ctx context.Context, userID uuid.UUID) (*dto.ECGResultListResponse, error) {
	s := c.stores.For(userID)
	if s.State() == store.StateIdle {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
	}

	items := s.Items()
	results := make([]*dto.ECGResultResponse, len(items))
	for i, result := range items {
		results[i] = toECGResultResponse(result)
	}

	resp := &dto.ECGResultListResponse{Results: results}
	if selected := s.Selected(); selected != uuid.Nil {
		resp.Selected = &selected
	}
	return resp, nil
}

func (c *ecgService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	return c.stores.For(userID).Delete(ctx, id)
}

func (c *ecgService) Select(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	c.stores.For(userID).Select(id)
	return nil
}

func (c *ecgService) Cleanup(userID uuid.UUID) {
	c.stores.Drop(userID)
}

// findResult reads from the in-memory collection, loading it first if
// this session has not touched it yet.
func (c *ecgService) findResult(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*entity.ECGResult, error) {
	s := c.stores.For(userID)
	if s.State() == store.StateIdle {
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
	}

	for _, result := range s.Items() {
		if result.Id == id {
			return &result, nil
		}
	}
	return nil, apperror.NewValidationError("result %s not found", id)
}

func toECGResultResponse(result entity.ECGResult) *dto.ECGResultResponse {
	return &dto.ECGResultResponse{
		Id:             result.Id,
		RawAnalysis:    result.RawAnalysis,
		Interpretation: result.Interpretation,
		ActionPlan:     result.ActionPlan,
		ImageURL:       result.ImageURL,
		CreatedAt:      result.CreatedAt,
		UpdatedAt:      result.UpdatedAt,
	}
}
