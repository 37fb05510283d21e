package handlers

import (
	"net/http"

	"servicedesk/models"
	"servicedesk/services/report"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Service report.ReportService
}

func NewReportHandler(svc report.ReportService) *ReportHandler {
	return &ReportHandler{Service: svc}
}

// reportRange reads ?from=&to=&establishmentId= (RFC 3339 bounds).
func reportRange(c *gin.Context) (models.ReportRange, error) {
	var (
		rng models.ReportRange
		err error
	)
	if rng.From, err = queryTime(c, "from"); err != nil {
		return rng, err
	}
	if rng.To, err = queryTime(c, "to"); err != nil {
		return rng, err
	}
	rng.EstablishmentID = c.Query("establishmentId")
	return rng, nil
}

func (h *ReportHandler) SummaryHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	rng, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	rep, err := h.Service.Summary(c.Request.Context(), me, rng)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportHandler) TechniciansHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	rng, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	rows, err := h.Service.Technicians(c.Request.Context(), me, rng)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportHandler handles POST /api/reports/export and returns the location of
// the generated CSV.
func (h *ReportHandler) ExportHandler(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	rng, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	exp, err := h.Service.Export(c.Request.Context(), me, rng)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}
