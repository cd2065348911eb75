package services

import (
	"testing"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []dto.LocationResult {
	return []dto.LocationResult{
		{Name: "Riverside Gym", Category: "gym", ZipCode: "90210", DistanceMiles: 1.2},
		{Name: "Oak Street Laundromat", Category: "laundromat", ZipCode: "90210", DistanceMiles: 2.8},
	}
}

func TestLocatorSearch_ConsumesPlanQuota(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.consumeSource = models.CreditSourcePlan
	locationRepo := &fakeLocationRepo{}
	svc := NewLocatorService(subRepo, locationRepo, &fakeLocationProvider{results: sampleResults()})

	resp, err := svc.Search("u-1", &dto.LocationSearchRequest{ZipCode: "90210", RadiusMiles: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, subRepo.consumed)
	assert.Equal(t, string(models.CreditSourcePlan), resp.CreditSource)
	assert.Equal(t, 2, resp.ResultCount)
	assert.Len(t, resp.Results, 2)

	// The search lands in history with its results snapshot.
	require.Len(t, locationRepo.searches, 1)
	saved := locationRepo.searches[0]
	assert.Equal(t, "90210", saved.ZipCode)
	assert.Equal(t, models.CreditSourcePlan, saved.CreditSource)
	assert.NotEmpty(t, saved.Results)
}

func TestLocatorSearch_FallsBackToLeadCredits(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.consumeSource = models.CreditSourceAddon
	svc := NewLocatorService(subRepo, &fakeLocationRepo{}, &fakeLocationProvider{results: sampleResults()})

	resp, err := svc.Search("u-1", &dto.LocationSearchRequest{ZipCode: "90210"})
	require.NoError(t, err)
	assert.Equal(t, string(models.CreditSourceAddon), resp.CreditSource)
}

func TestLocatorSearch_ExhaustedQuota(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.consumeErr = repositories.ErrSearchExhausted
	locationRepo := &fakeLocationRepo{}
	svc := NewLocatorService(subRepo, locationRepo, &fakeLocationProvider{results: sampleResults()})

	_, err := svc.Search("u-1", &dto.LocationSearchRequest{ZipCode: "90210"})
	assert.ErrorIs(t, err, apperrors.ErrSearchLimitReached)
	assert.Empty(t, locationRepo.searches, "exhausted search must not be recorded")
}

func TestLocatorSearch_InvalidZip(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.consumeSource = models.CreditSourcePlan
	svc := NewLocatorService(subRepo, &fakeLocationRepo{}, &fakeLocationProvider{})

	for _, zip := range []string{"", "1234", "123456", "9021a"} {
		_, err := svc.Search("u-1", &dto.LocationSearchRequest{ZipCode: zip})
		assert.Error(t, err, "zip %q", zip)
	}
	assert.Equal(t, 0, subRepo.consumed, "invalid input must not spend a search")
}

func TestLocatorSearch_DefaultRadius(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.consumeSource = models.CreditSourcePlan
	locationRepo := &fakeLocationRepo{}
	svc := NewLocatorService(subRepo, locationRepo, &fakeLocationProvider{results: sampleResults()})

	resp, err := svc.Search("u-1", &dto.LocationSearchRequest{ZipCode: "90210"})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.RadiusMiles)
}

func TestSampleLocationProvider_Deterministic(t *testing.T) {
	provider := NewSampleLocationProvider()

	first, err := provider.FindLocations("90210", 10, "snack", 15)
	require.NoError(t, err)
	second, err := provider.FindLocations("90210", 10, "snack", 15)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same query must produce the same leads")
	assert.NotEmpty(t, first)
	assert.LessOrEqual(t, len(first), 15)

	other, err := provider.FindLocations("10001", 10, "snack", 15)
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "different zips should differ")
}
