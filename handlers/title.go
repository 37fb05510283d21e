package handlers

import (
	"net/http"

	"servicedesk/models"
	"servicedesk/services/title"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

// TitleHandler serves the preset order-title catalogue.
type TitleHandler struct {
	Service title.TitleService
}

func NewTitleHandler(svc title.TitleService) *TitleHandler {
	return &TitleHandler{Service: svc}
}

func (h *TitleHandler) CreateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Service.Create(c.Request.Context(), me, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TitleHandler) ListHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	titles, err := h.Service.List(c.Request.Context(), me, queryBool(c, "includeInactive"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, titles)
}

func (h *TitleHandler) UpdateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.TitleRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Service.Update(c.Request.Context(), me, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TitleHandler) DeleteHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), me, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Title deleted"})
}
