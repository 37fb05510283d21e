package handlers

import (
	"net/http"

	"servicedesk/models"
	"servicedesk/services/establishment"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

// EstablishmentHandler serves establishments and their sectors.
type EstablishmentHandler struct {
	Service establishment.EstablishmentService
}

func NewEstablishmentHandler(svc establishment.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{Service: svc}
}

func (h *EstablishmentHandler) CreateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.EstablishmentRequest
	if !bindJSON(c, &req) {
		return
	}
	est, err := h.Service.Create(c.Request.Context(), me, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, est)
}

// ListHandler handles GET /api/establishments?includeInactive=true.
func (h *EstablishmentHandler) ListHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	list, err := h.Service.List(c.Request.Context(), me, queryBool(c, "includeInactive"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EstablishmentHandler) GetHandler(c *gin.Context) {
	est, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *EstablishmentHandler) UpdateHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.EstablishmentRequest
	if !bindJSON(c, &req) {
		return
	}
	est, err := h.Service.Update(c.Request.Context(), me, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func (h *EstablishmentHandler) DeleteHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), me, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Establishment deleted"})
}

func (h *EstablishmentHandler) CreateSectorHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.SectorRequest
	if !bindJSON(c, &req) {
		return
	}
	sector, err := h.Service.CreateSector(c.Request.Context(), me, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sector)
}

func (h *EstablishmentHandler) ListSectorsHandler(c *gin.Context) {
	sectors, err := h.Service.ListSectors(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sectors)
}

func (h *EstablishmentHandler) DeleteSectorHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteSector(c.Request.Context(), me, c.Param("id"), c.Param("sectorId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sector deleted"})
}
