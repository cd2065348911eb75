package services

import (
	"context"
	"strings"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/ai"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// jarvisHistoryWindow caps how many prior turns feed the prompt.
const jarvisHistoryWindow = 10

type JarvisService interface {
	Chat(ctx context.Context, userID string, req *dto.JarvisChatRequest) (*dto.JarvisChatResponse, error)
	GetSessionHistory(userID, sessionID string) ([]models.JarvisConversation, error)
	GetRecentSessions(userID string) ([]string, error)
}

type JarvisServiceImpl struct {
	userRepo    repositories.UserRepository
	toolkitRepo repositories.AIToolkitRepository
	aiClient    ai.Client
}

func NewJarvisService(
	userRepo repositories.UserRepository,
	toolkitRepo repositories.AIToolkitRepository,
	aiClient ai.Client,
) JarvisService {
	return &JarvisServiceImpl{
		userRepo:    userRepo,
		toolkitRepo: toolkitRepo,
		aiClient:    aiClient,
	}
}

const jarvisSystemPrompt = "You are JARVIS, a business assistant for vending machine " +
	"operators. You advise on locations, product mix, pricing and day-to-day operations. " +
	"Answer concretely and briefly; ask a clarifying question when the request is vague."

// Chat runs one conversation turn. A missing session ID starts a new
// session. Paid plans only.
func (s *JarvisServiceImpl) Chat(ctx context.Context, userID string, req *dto.JarvisChatRequest) (*dto.JarvisChatResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	sub := user.ActiveSubscription()
	if sub == nil || sub.Plan.IsFree() {
		return nil, apperrors.ErrBusinessToolsAccess
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conversationType := req.ConversationType
	if conversationType == "" {
		conversationType = "general"
	}

	response, generated := s.produceResponse(ctx, userID, sessionID, req.Message)

	conv := &models.JarvisConversation{
		UserID:           userID,
		SessionID:        sessionID,
		ConversationType: conversationType,
		Message:          req.Message,
		Response:         response,
		GeneratedByAI:    generated,
	}
	if err := s.toolkitRepo.CreateConversation(conv); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.JarvisChatResponse{
		SessionID:     sessionID,
		Response:      response,
		GeneratedByAI: generated,
	}, nil
}

func (s *JarvisServiceImpl) GetSessionHistory(userID, sessionID string) ([]models.JarvisConversation, error) {
	convs, err := s.toolkitRepo.FindConversationsBySession(userID, sessionID, 100)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return convs, nil
}

func (s *JarvisServiceImpl) GetRecentSessions(userID string) ([]string, error) {
	sessions, err := s.toolkitRepo.FindRecentSessions(userID, 20)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return sessions, nil
}

func (s *JarvisServiceImpl) produceResponse(ctx context.Context, userID, sessionID, message string) (string, bool) {
	if s.aiClient == nil || !s.aiClient.Available() {
		return fallbackJarvisResponse(message), false
	}

	prompt := s.buildPromptWithHistory(userID, sessionID, message)
	response, err := s.aiClient.Complete(ctx, jarvisSystemPrompt, prompt)
	if err != nil || strings.TrimSpace(response) == "" {
		logger.WithError(err).Warn("jarvis ai call failed, using fallback")
		return fallbackJarvisResponse(message), false
	}
	return response, true
}

func (s *JarvisServiceImpl) buildPromptWithHistory(userID, sessionID, message string) string {
	history, err := s.toolkitRepo.FindConversationsBySession(userID, sessionID, jarvisHistoryWindow)
	if err != nil {
		history = nil
	}

	var b strings.Builder
	for _, turn := range history {
		b.WriteString("Operator: ")
		b.WriteString(turn.Message)
		b.WriteString("\nJARVIS: ")
		b.WriteString(turn.Response)
		b.WriteString("\n")
	}
	b.WriteString("Operator: ")
	b.WriteString(message)
	return b.String()
}

func fallbackJarvisResponse(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "location"):
		return "Good vending locations combine steady foot traffic with limited nearby food options. " +
			"Look at gyms, auto shops, laundromats and mid-size offices in your area, and ask each " +
			"manager about daily visitor counts before committing a machine."
	case strings.Contains(lower, "price") || strings.Contains(lower, "pricing"):
		return "A common starting point is pricing snacks at roughly double your wholesale cost, " +
			"then adjusting per location. Track per-slot sales for two weeks before changing prices."
	case strings.Contains(lower, "product") || strings.Contains(lower, "stock"):
		return "Start with proven sellers: water, sports drinks, chips and candy bars. Reserve two " +
			"slots for experiments and rotate out anything that does not sell within three weeks."
	default:
		return "I'm currently running in offline mode, so I can only offer general guidance. " +
			"Try asking about locations, pricing or product mix, or check back later for " +
			"full AI-powered answers."
	}
}
