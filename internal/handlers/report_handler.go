package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewReportHandler(exportService services.ExportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// RedemptionsReport downloads the redemption desk spreadsheet.
func (h *ReportHandler) RedemptionsReport(c *gin.Context) {
	filters := repositories.RedemptionFilters{}
	if status := c.Query("status"); status != "" {
		st := models.RedemptionStatus(status)
		filters.Status = &st
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	h.LogRequest(c, "Rendering redemption report")

	data, err := h.exportService.RedemptionsXLSX(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("redemptions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// HistoryReport downloads the point ledger as CSV.
func (h *ReportHandler) HistoryReport(c *gin.Context) {
	filters := repositories.HistoryFilters{}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if hType := c.Query("type"); hType != "" {
		t := models.HistoryType(hType)
		filters.Type = &t
	}

	h.LogRequest(c, "Rendering history report")

	data, err := h.exportService.HistoryCSV(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("point-history-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
