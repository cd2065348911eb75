package handlers

import (
	"net/http"

	"vendinghive_backend/internal/middleware"
	"vendinghive_backend/internal/services"
	"vendinghive_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AIToolkitHandler struct {
	*BaseHandler
	businessTools   services.BusinessToolsService
	scriptGenerator services.ScriptGeneratorService
	jarvis          services.JarvisService
}

func NewAIToolkitHandler(
	base *BaseHandler,
	businessTools services.BusinessToolsService,
	scriptGenerator services.ScriptGeneratorService,
	jarvis services.JarvisService,
) *AIToolkitHandler {
	return &AIToolkitHandler{
		BaseHandler:     base,
		businessTools:   businessTools,
		scriptGenerator: scriptGenerator,
		jarvis:          jarvis,
	}
}

func (h *AIToolkitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	toolkit := rg.Group("/ai-toolkit")
	toolkit.Use(middleware.AuthMiddleware())
	{
		toolkit.POST("/calculators/lead-value", h.EstimateLeadValue)
		toolkit.POST("/calculators/snack-price", h.CalculateSnackPrice)
		toolkit.GET("/calculators/history", h.GetCalculationHistory)

		toolkit.POST("/scripts", h.GenerateScript)
		toolkit.GET("/scripts", h.GetScripts)
		toolkit.POST("/scripts/:id/regenerate", h.RegenerateScript)
		toolkit.DELETE("/scripts/:id", h.DeleteScript)

		toolkit.POST("/jarvis/chat", h.JarvisChat)
		toolkit.GET("/jarvis/sessions", h.GetJarvisSessions)
		toolkit.GET("/jarvis/sessions/:session_id", h.GetJarvisHistory)
	}
}

func (h *AIToolkitHandler) EstimateLeadValue(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.LeadValueRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.businessTools.EstimateLeadValue(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AIToolkitHandler) CalculateSnackPrice(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SnackPriceRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.businessTools.CalculateSnackPrice(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AIToolkitHandler) GetCalculationHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	calcType := c.Query("type")

	records, err := h.businessTools.GetCalculationHistory(userID, calcType, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculations": records})
}

func (h *AIToolkitHandler) GenerateScript(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateScriptRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.scriptGenerator.GenerateScript(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AIToolkitHandler) GetScripts(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	scripts, total, err := h.scriptGenerator.GetScripts(userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scripts": scripts, "total": total})
}

func (h *AIToolkitHandler) RegenerateScript(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.scriptGenerator.RegenerateScript(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AIToolkitHandler) DeleteScript(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.scriptGenerator.DeleteScript(userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Script deleted"})
}

func (h *AIToolkitHandler) JarvisChat(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.JarvisChatRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.jarvis.Chat(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AIToolkitHandler) GetJarvisSessions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sessions, err := h.jarvis.GetRecentSessions(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *AIToolkitHandler) GetJarvisHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	history, err := h.jarvis.GetSessionHistory(userID, c.Param("session_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": history})
}
