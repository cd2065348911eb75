package handlers

import (
	"net/http"

	"vendinghive_backend/internal/middleware"
	"vendinghive_backend/internal/services"
	"vendinghive_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CoreHandler struct {
	*BaseHandler
	coreService    services.CoreService
	weatherService services.WeatherService
}

func NewCoreHandler(base *BaseHandler, coreService services.CoreService, weatherService services.WeatherService) *CoreHandler {
	return &CoreHandler{
		BaseHandler:    base,
		coreService:    coreService,
		weatherService: weatherService,
	}
}

func (h *CoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.GetNotifications)

	core := rg.Group("")
	core.Use(middleware.AuthMiddleware())
	{
		core.GET("/weather", h.GetWeather)
		core.POST("/tickets", h.CreateTicket)
		core.GET("/tickets", h.GetMyTickets)
	}
}

func (h *CoreHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.coreService.GetCurrentNotifications()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetWeather is a dashboard nicety. Missing API key or upstream
// failure returns an empty body, never an error.
func (h *CoreHandler) GetWeather(c *gin.Context) {
	city := c.DefaultQuery("city", "")
	if city == "" {
		c.JSON(http.StatusOK, gin.H{"weather": nil})
		return
	}

	weather := h.weatherService.GetCurrentWeather(city)
	c.JSON(http.StatusOK, gin.H{"weather": weather})
}

func (h *CoreHandler) CreateTicket(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	ticket, err := h.coreService.CreateTicket(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *CoreHandler) GetMyTickets(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	tickets, err := h.coreService.GetUserTickets(userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}
