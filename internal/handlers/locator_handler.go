package handlers

import (
	"net/http"

	"vendinghive_backend/internal/middleware"
	"vendinghive_backend/internal/services"
	"vendinghive_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type LocatorHandler struct {
	*BaseHandler
	locatorService services.LocatorService
}

func NewLocatorHandler(base *BaseHandler, locatorService services.LocatorService) *LocatorHandler {
	return &LocatorHandler{
		BaseHandler:    base,
		locatorService: locatorService,
	}
}

func (h *LocatorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	locator := rg.Group("/locator")
	locator.Use(middleware.AuthMiddleware())
	{
		locator.POST("/search", h.Search)
		locator.GET("/history", h.GetHistory)
		locator.GET("/searches/:id", h.GetSearch)
	}
}

func (h *LocatorHandler) Search(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.LocationSearchRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.locatorService.Search(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocatorHandler) GetHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	resp, err := h.locatorService.GetSearchHistory(userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LocatorHandler) GetSearch(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.locatorService.GetSearch(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
