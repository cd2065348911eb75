package services

import (
	"context"
	"fmt"
	"strings"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/ai"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"
)

type ScriptGeneratorService interface {
	GenerateScript(ctx context.Context, userID string, req *dto.GenerateScriptRequest) (*dto.ScriptResponse, error)
	RegenerateScript(ctx context.Context, userID, scriptID string) (*dto.ScriptResponse, error)
	GetScripts(userID string, limit, offset int) ([]dto.ScriptResponse, int64, error)
	DeleteScript(userID, scriptID string) error
}

type ScriptGeneratorServiceImpl struct {
	userRepo    repositories.UserRepository
	toolkitRepo repositories.AIToolkitRepository
	aiClient    ai.Client
}

func NewScriptGeneratorService(
	userRepo repositories.UserRepository,
	toolkitRepo repositories.AIToolkitRepository,
	aiClient ai.Client,
) ScriptGeneratorService {
	return &ScriptGeneratorServiceImpl{
		userRepo:    userRepo,
		toolkitRepo: toolkitRepo,
		aiClient:    aiClient,
	}
}

// GenerateScript produces an outreach script for a target location.
// Generation counts against the plan's template quota; when the AI
// backend is down or unconfigured the canned template fills in.
func (s *ScriptGeneratorServiceImpl) GenerateScript(ctx context.Context, userID string, req *dto.GenerateScriptRequest) (*dto.ScriptResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sub := user.ActiveSubscription()
	if sub == nil {
		return nil, apperrors.ErrNoActiveSubscription
	}

	count, err := s.toolkitRepo.CountScriptsByUserID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if count >= int64(sub.Plan.ScriptTemplatesCount) {
		return nil, apperrors.ErrScriptQuotaReached
	}

	content, generated := s.produceContent(ctx, req)

	script := &models.GeneratedScript{
		UserID:             userID,
		ScriptType:         models.ScriptType(req.ScriptType),
		TargetLocationName: req.TargetLocationName,
		LocationCategory:   req.LocationCategory,
		MachineType:        req.MachineType,
		Content:            content,
		GeneratedByAI:      generated,
	}
	if err := s.toolkitRepo.CreateScript(script); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return scriptToDTO(script), nil
}

// RegenerateScript rewrites an existing script in place. Only plans
// with regeneration enabled may do this.
func (s *ScriptGeneratorServiceImpl) RegenerateScript(ctx context.Context, userID, scriptID string) (*dto.ScriptResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sub := user.ActiveSubscription()
	if sub == nil {
		return nil, apperrors.ErrNoActiveSubscription
	}
	if !sub.Plan.RegenerationAllowed {
		return nil, apperrors.ErrRegenerationNotAllowed
	}

	script, err := s.toolkitRepo.FindScriptByID(scriptID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrScriptNotFound) {
			return nil, apperrors.NewNotFoundError("ai_toolkit", "Script not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if script.UserID != userID {
		return nil, apperrors.NewNotFoundError("ai_toolkit", "Script not found")
	}

	req := &dto.GenerateScriptRequest{
		ScriptType:         string(script.ScriptType),
		TargetLocationName: script.TargetLocationName,
		LocationCategory:   script.LocationCategory,
		MachineType:        script.MachineType,
	}
	content, generated := s.produceContent(ctx, req)

	script.Content = content
	script.GeneratedByAI = generated
	script.RegenerationCount++
	if err := s.toolkitRepo.UpdateScript(script); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return scriptToDTO(script), nil
}

func (s *ScriptGeneratorServiceImpl) GetScripts(userID string, limit, offset int) ([]dto.ScriptResponse, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	scripts, err := s.toolkitRepo.FindScriptsByUserID(userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	total, err := s.toolkitRepo.CountScriptsByUserID(userID)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.ScriptResponse, 0, len(scripts))
	for i := range scripts {
		result = append(result, *scriptToDTO(&scripts[i]))
	}
	return result, total, nil
}

func (s *ScriptGeneratorServiceImpl) DeleteScript(userID, scriptID string) error {
	if err := s.toolkitRepo.DeleteScript(scriptID, userID); err != nil {
		if apperrors.Is(err, repositories.ErrScriptNotFound) {
			return apperrors.NewNotFoundError("ai_toolkit", "Script not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *ScriptGeneratorServiceImpl) produceContent(ctx context.Context, req *dto.GenerateScriptRequest) (string, bool) {
	if s.aiClient != nil && s.aiClient.Available() {
		content, err := s.aiClient.Complete(ctx, scriptSystemPrompt, buildScriptPrompt(req))
		if err == nil && strings.TrimSpace(content) != "" {
			return content, true
		}
		logger.WithError(err).Warn("ai script generation failed, using template")
	}
	return fallbackScript(req), false
}

const scriptSystemPrompt = "You are a sales coach for vending machine operators. " +
	"Write a concise, friendly outreach script that an operator can use to pitch " +
	"placing a vending machine at a business. Keep it under 250 words."

func buildScriptPrompt(req *dto.GenerateScriptRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Script type: %s\n", req.ScriptType)
	fmt.Fprintf(&b, "Target location: %s\n", req.TargetLocationName)
	if req.LocationCategory != "" {
		fmt.Fprintf(&b, "Location category: %s\n", req.LocationCategory)
	}
	if req.MachineType != "" {
		fmt.Fprintf(&b, "Machine type: %s\n", req.MachineType)
	}
	if req.ExtraContext != "" {
		fmt.Fprintf(&b, "Extra context: %s\n", req.ExtraContext)
	}
	return b.String()
}

func fallbackScript(req *dto.GenerateScriptRequest) string {
	machine := req.MachineType
	if machine == "" {
		machine = "vending machine"
	}

	switch models.ScriptType(req.ScriptType) {
	case models.ScriptTypeEmail:
		return fmt.Sprintf(
			"Subject: A no-cost amenity for %s\n\n"+
				"Hi,\n\n"+
				"My name is [Your Name] and I operate %ss in the area. "+
				"I'd love to place one at %s at no cost to you. We handle stocking, "+
				"maintenance and service, and your visitors get convenient snacks and drinks.\n\n"+
				"Would you have 10 minutes this week for a quick call?\n\n"+
				"Best regards,\n[Your Name]",
			req.TargetLocationName, machine, req.TargetLocationName)
	case models.ScriptTypeInPerson:
		return fmt.Sprintf(
			"Hi, I'm [Your Name], a local vending operator. I was visiting %s and "+
				"noticed your customers might appreciate a %s on site. "+
				"There's no cost to you. We install, stock and service everything, and "+
				"many locations earn a commission on sales. Who would be the right person "+
				"to talk to about that?",
			req.TargetLocationName, machine)
	default:
		return fmt.Sprintf(
			"Hi, this is [Your Name] with [Your Company]. I'm reaching out because we "+
				"place %ss at businesses like %s at zero cost to the location. "+
				"We take care of everything, and your staff and visitors get 24/7 access to "+
				"refreshments. Do you have two minutes so I can explain how it works?",
			machine, req.TargetLocationName)
	}
}

func scriptToDTO(script *models.GeneratedScript) *dto.ScriptResponse {
	return &dto.ScriptResponse{
		ID:                 script.ID,
		ScriptType:         string(script.ScriptType),
		TargetLocationName: script.TargetLocationName,
		Content:            script.Content,
		RegenerationCount:  script.RegenerationCount,
		GeneratedByAI:      script.GeneratedByAI,
		CreatedAt:          script.CreatedAt,
	}
}
