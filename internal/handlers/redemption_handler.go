package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type RedemptionHandler struct {
	BaseHandler
	ledgerService services.LedgerService
	validator     *utils.Validator
}

type RedeemRequest struct {
	VoucherLevelID uint `json:"voucher_level_id" validate:"required,min=1"`
}

type ProcessRedemptionRequest struct {
	Status models.RedemptionStatus `json:"status" validate:"required,redemption_status"`
}

type AdjustPointsRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

func NewRedemptionHandler(ledgerService services.LedgerService, validator *utils.Validator, logger utils.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		BaseHandler:   NewBaseHandler(logger),
		ledgerService: ledgerService,
		validator:     validator,
	}
}

func (h *RedemptionHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	studentID := auth.CurrentUserID(c)
	h.LogRequest(c, "Redeeming voucher", "student_id", studentID, "voucher_level_id", req.VoucherLevelID)

	redemption, err := h.ledgerService.Redeem(c.Request.Context(), studentID, req.VoucherLevelID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Redemption created", Data: redemption})
}

func (h *RedemptionHandler) ListRedemptions(c *gin.Context) {
	filters := repositories.RedemptionFilters{}
	filters.Limit, filters.Offset = Pagination(c)
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

	// Students see only their own redemptions.
	if auth.CurrentUserRole(c) == models.RoleStudent {
		studentID := auth.CurrentUserID(c)
		filters.StudentID = &studentID
	} else if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	redemptions, total, err := h.ledgerService.ListRedemptions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: redemptions, Total: total})
}

// GetRedemptionByCode looks up a redemption by the claim code a student
// presents at the counter.
func (h *RedemptionHandler) GetRedemptionByCode(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	redemption, err := h.ledgerService.GetRedemptionByCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: redemption})
}

// ProcessRedemption settles a pending redemption as Used or Rejected.
func (h *RedemptionHandler) ProcessRedemption(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req ProcessRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	staffID := auth.CurrentUserID(c)
	h.LogRequest(c, "Processing redemption", "redemption_id", id, "status", req.Status)

	redemption, err := h.ledgerService.ProcessRedemption(c.Request.Context(), id, req.Status, staffID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Redemption processed", Data: redemption})
}

// ===== BALANCE AND HISTORY =====

func (h *RedemptionHandler) GetMyBalance(c *gin.Context) {
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"balance": balance}})
}

func (h *RedemptionHandler) GetHistory(c *gin.Context) {
	filters := repositories.HistoryFilters{}
	filters.Limit, filters.Offset = Pagination(c)

	if auth.CurrentUserRole(c) == models.RoleStudent {
		userID := auth.CurrentUserID(c)
		filters.UserID = &userID
	} else if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if hType := c.Query("type"); hType != "" {
		t := models.HistoryType(hType)
		filters.Type = &t
	}

	history, total, err := h.ledgerService.GetHistory(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: history, Total: total})
}

// AdjustPoints applies a signed manual correction to a student's balance.
func (h *RedemptionHandler) AdjustPoints(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	var req AdjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actorID := auth.CurrentUserID(c)
	h.LogRequest(c, "Adjusting points", "student_id", studentID, "delta", req.Delta)

	profile, err := h.ledgerService.AdjustManual(c.Request.Context(), studentID, req.Delta, req.Reason, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Points adjusted", Data: profile})
}
