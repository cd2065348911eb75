package services

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"regexp"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

// LocationProvider supplies candidate locations around a zip code.
type LocationProvider interface {
	FindLocations(zipCode string, radiusMiles int, machineType string, limit int) ([]dto.LocationResult, error)
}

type LocatorService interface {
	Search(userID string, req *dto.LocationSearchRequest) (*dto.LocationSearchResponse, error)
	GetSearchHistory(userID string, limit, offset int) (*dto.SearchHistoryResponse, error)
	GetSearch(userID, searchID string) (*dto.LocationSearchResponse, error)
}

type LocatorServiceImpl struct {
	subscriptionRepo repositories.SubscriptionRepository
	locationRepo     repositories.LocationRepository
	provider         LocationProvider
}

func NewLocatorService(
	subscriptionRepo repositories.SubscriptionRepository,
	locationRepo repositories.LocationRepository,
	provider LocationProvider,
) LocatorService {
	return &LocatorServiceImpl{
		subscriptionRepo: subscriptionRepo,
		locationRepo:     locationRepo,
		provider:         provider,
	}
}

// Search runs one locator query. The search unit is consumed before
// the provider call: plan quota first, lead credits second. No pools
// left means 403, and nothing is spent.
func (s *LocatorServiceImpl) Search(userID string, req *dto.LocationSearchRequest) (*dto.LocationSearchResponse, error) {
	if !zipCodePattern.MatchString(req.ZipCode) {
		return nil, apperrors.NewBadRequestError("zip_code must be exactly 5 digits")
	}

	radius := req.RadiusMiles
	if radius <= 0 {
		radius = 5
	}

	source, err := s.subscriptionRepo.ConsumeSearch(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSearchExhausted) {
			return nil, apperrors.ErrSearchLimitReached
		}
		return nil, apperrors.InternalError(err)
	}

	results, err := s.provider.FindLocations(req.ZipCode, radius, req.MachineType, 15)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	search := &models.LocationSearch{
		UserID:       userID,
		ZipCode:      req.ZipCode,
		RadiusMiles:  radius,
		MachineType:  req.MachineType,
		ResultCount:  len(results),
		CreditSource: source,
		Results:      datatypes.JSON(resultsJSON),
	}
	if err := s.locationRepo.Create(search); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LocationSearchResponse{
		SearchID:     search.ID,
		ZipCode:      search.ZipCode,
		RadiusMiles:  search.RadiusMiles,
		CreditSource: string(search.CreditSource),
		ResultCount:  search.ResultCount,
		Results:      results,
		CreatedAt:    search.CreatedAt,
	}, nil
}

func (s *LocatorServiceImpl) GetSearchHistory(userID string, limit, offset int) (*dto.SearchHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	searches, err := s.locationRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	total, err := s.locationRepo.CountByUserID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.SearchHistoryResponse{Total: total}
	for _, search := range searches {
		resp.Searches = append(resp.Searches, dto.SearchHistoryEntry{
			ID:           search.ID,
			ZipCode:      search.ZipCode,
			RadiusMiles:  search.RadiusMiles,
			MachineType:  search.MachineType,
			ResultCount:  search.ResultCount,
			CreditSource: string(search.CreditSource),
			CreatedAt:    search.CreatedAt,
		})
	}
	return resp, nil
}

func (s *LocatorServiceImpl) GetSearch(userID, searchID string) (*dto.LocationSearchResponse, error) {
	search, err := s.locationRepo.FindByID(searchID, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSearchNotFound) {
			return nil, apperrors.NewNotFoundError("locator", "Search not found")
		}
		return nil, apperrors.InternalError(err)
	}

	var results []dto.LocationResult
	if len(search.Results) > 0 {
		if err := json.Unmarshal(search.Results, &results); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return &dto.LocationSearchResponse{
		SearchID:     search.ID,
		ZipCode:      search.ZipCode,
		RadiusMiles:  search.RadiusMiles,
		CreditSource: string(search.CreditSource),
		ResultCount:  search.ResultCount,
		Results:      results,
		CreatedAt:    search.CreatedAt,
	}, nil
}

// SampleLocationProvider generates deterministic sample leads from the
// zip code. It stands in until a real places API is wired up.
type SampleLocationProvider struct{}

func NewSampleLocationProvider() *SampleLocationProvider {
	return &SampleLocationProvider{}
}

var sampleCategories = []struct {
	category string
	names    []string
	traffic  string
}{
	{"fitness", []string{"Iron Works Gym", "Peak Performance Fitness", "FlexZone 24/7"}, "high"},
	{"automotive", []string{"Precision Auto Care", "Sunrise Tire & Lube"}, "medium"},
	{"laundromat", []string{"Spin City Laundry", "The Wash House"}, "medium"},
	{"office", []string{"Gateway Business Center", "Summit Office Park"}, "high"},
	{"medical", []string{"Lakeside Family Clinic", "Bright Smile Dental"}, "low"},
	{"education", []string{"Little Sprouts Daycare", "Northside Tutoring Center"}, "medium"},
}

func (p *SampleLocationProvider) FindLocations(zipCode string, radiusMiles int, machineType string, limit int) ([]dto.LocationResult, error) {
	h := fnv.New32a()
	h.Write([]byte(zipCode))
	seed := h.Sum32()

	var results []dto.LocationResult
	for i, cat := range sampleCategories {
		for j, name := range cat.names {
			if len(results) >= limit {
				return results, nil
			}
			n := seed + uint32(i*7+j*13)
			distance := float64(n%uint32(radiusMiles*10)+1) / 10.0
			results = append(results, dto.LocationResult{
				Name:          name,
				Category:      cat.category,
				Address:       fmt.Sprintf("%d %s St", 100+n%899, streetNames[n%uint32(len(streetNames))]),
				ZipCode:       zipCode,
				DistanceMiles: distance,
				FootTraffic:   cat.traffic,
			})
		}
	}
	return results, nil
}

var streetNames = []string{"Main", "Oak", "Maple", "Cedar", "Washington", "Lake", "Hill", "Park"}
