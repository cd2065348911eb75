package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/services/dto"
)

const weatherCacheTTL = 30 * time.Minute

// WeatherService returns current weather for the dashboard widget.
// Purely decorative: every failure path degrades to nil, never an
// error surfaced to the user.
type WeatherService interface {
	GetCurrentWeather(city string) *dto.WeatherResponse
}

type WeatherServiceImpl struct {
	apiKey     string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]cachedWeather
}

type cachedWeather struct {
	data      *dto.WeatherResponse
	expiresAt time.Time
}

func NewWeatherService(apiKey string) WeatherService {
	return &WeatherServiceImpl{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: make(map[string]cachedWeather),
	}
}

func (s *WeatherServiceImpl) GetCurrentWeather(city string) *dto.WeatherResponse {
	if s.apiKey == "" || city == "" {
		return nil
	}

	key := strings.ToLower(city)

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.data
	}

	data := s.fetch(city)
	if data == nil {
		return nil
	}

	s.mu.Lock()
	s.cache[key] = cachedWeather{data: data, expiresAt: time.Now().Add(weatherCacheTTL)}
	s.mu.Unlock()

	return data
}

func (s *WeatherServiceImpl) fetch(city string) *dto.WeatherResponse {
	endpoint := fmt.Sprintf(
		"https://api.openweathermap.org/data/2.5/weather?q=%s&units=metric&appid=%s",
		url.QueryEscape(city), s.apiKey)

	resp, err := s.httpClient.Get(endpoint)
	if err != nil {
		logger.WithError(err).Warn("weather fetch failed", "city", city)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("weather api returned non-200", "city", city, "status", resp.StatusCode)
		return nil
	}

	var payload struct {
		Name    string `json:"name"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.WithError(err).Warn("weather decode failed", "city", city)
		return nil
	}

	description := ""
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
	}

	return &dto.WeatherResponse{
		City:        payload.Name,
		Description: description,
		TempC:       payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		FetchedAt:   time.Now(),
	}
}
