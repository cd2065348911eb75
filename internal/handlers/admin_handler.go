package handlers

import (
	"net/http"

	"vendinghive_backend/internal/middleware"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/services"
	"vendinghive_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	*BaseHandler
	adminService services.AdminService
	coreService  services.CoreService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService, coreService services.CoreService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  base,
		adminService: adminService,
		coreService:  coreService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.GetStats)
		admin.GET("/users", h.ListUsers)
		admin.GET("/subscriptions", h.ListSubscriptions)
		admin.PATCH("/tickets/:id", h.UpdateTicket)
	}
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := ParsePagination(c)
	users, total, err := h.adminService.ListUsers(limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	limit, offset := ParsePagination(c)
	subscriptions, total, err := h.adminService.ListSubscriptions(limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions, "total": total})
}

func (h *AdminHandler) UpdateTicket(c *gin.Context) {
	var req dto.UpdateTicketRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	ticket, err := h.coreService.UpdateTicketStatus(c.Param("id"), models.TicketStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
