package services

import (
	"context"
	"testing"
	"time"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptUser(plan models.SubscriptionPlan) *models.User {
	end := time.Now().AddDate(0, 0, 20)
	return &models.User{
		BaseModel: models.BaseModel{ID: "u-1"},
		Subscription: &models.UserSubscription{
			IsActive: true,
			EndDate:  &end,
			Plan:     plan,
		},
	}
}

func scriptRequest() *dto.GenerateScriptRequest {
	return &dto.GenerateScriptRequest{
		ScriptType:         "cold_call",
		TargetLocationName: "Iron Works Gym",
		LocationCategory:   "fitness",
		MachineType:        "snack",
	}
}

func TestGenerateScript_UsesAIWhenAvailable(t *testing.T) {
	toolkitRepo := &fakeToolkitRepo{}
	user := scriptUser(models.SubscriptionPlan{Name: models.PlanPro, ScriptTemplatesCount: 10})
	svc := NewScriptGeneratorService(newFakeUserRepo(user), toolkitRepo,
		&fakeAIClient{available: true, response: "Hello, this is your pitch."})

	resp, err := svc.GenerateScript(context.Background(), "u-1", scriptRequest())
	require.NoError(t, err)

	assert.True(t, resp.GeneratedByAI)
	assert.Equal(t, "Hello, this is your pitch.", resp.Content)
	require.Len(t, toolkitRepo.scripts, 1)
	assert.Equal(t, models.ScriptTypeColdCall, toolkitRepo.scripts[0].ScriptType)
}

func TestGenerateScript_FallsBackWithoutAI(t *testing.T) {
	toolkitRepo := &fakeToolkitRepo{}
	user := scriptUser(models.SubscriptionPlan{Name: models.PlanPro, ScriptTemplatesCount: 10})
	svc := NewScriptGeneratorService(newFakeUserRepo(user), toolkitRepo, &fakeAIClient{available: false})

	resp, err := svc.GenerateScript(context.Background(), "u-1", scriptRequest())
	require.NoError(t, err)

	assert.False(t, resp.GeneratedByAI)
	assert.NotEmpty(t, resp.Content)
	assert.Contains(t, resp.Content, "Iron Works Gym")
}

func TestGenerateScript_QuotaReached(t *testing.T) {
	toolkitRepo := &fakeToolkitRepo{scriptCount: 5}
	user := scriptUser(models.SubscriptionPlan{Name: models.PlanStarter, ScriptTemplatesCount: 5})
	svc := NewScriptGeneratorService(newFakeUserRepo(user), toolkitRepo, &fakeAIClient{})

	_, err := svc.GenerateScript(context.Background(), "u-1", scriptRequest())
	assert.ErrorIs(t, err, apperrors.ErrScriptQuotaReached)
	assert.Empty(t, toolkitRepo.scripts)
}

func TestGenerateScript_NoActiveSubscription(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
	svc := NewScriptGeneratorService(newFakeUserRepo(user), &fakeToolkitRepo{}, &fakeAIClient{})

	_, err := svc.GenerateScript(context.Background(), "u-1", scriptRequest())
	assert.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)
}

func TestRegenerateScript_GateOnPlanFlag(t *testing.T) {
	user := scriptUser(models.SubscriptionPlan{Name: models.PlanFree, ScriptTemplatesCount: 1, RegenerationAllowed: false})
	svc := NewScriptGeneratorService(newFakeUserRepo(user), &fakeToolkitRepo{}, &fakeAIClient{})

	_, err := svc.RegenerateScript(context.Background(), "u-1", "script-1")
	assert.ErrorIs(t, err, apperrors.ErrRegenerationNotAllowed)
}
