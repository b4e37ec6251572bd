package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type VoucherHandler struct {
	BaseHandler
	voucherService services.VoucherService
}

func NewVoucherHandler(voucherService services.VoucherService, logger utils.Logger) *VoucherHandler {
	return &VoucherHandler{
		BaseHandler:    NewBaseHandler(logger),
		voucherService: voucherService,
	}
}

func (h *VoucherHandler) CreateLevel(c *gin.Context) {
	var req services.VoucherLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating voucher level", "name", req.Name, "cost", req.Cost)

	level, err := h.voucherService.CreateLevel(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Voucher level created", Data: level})
}

func (h *VoucherHandler) ListLevels(c *gin.Context) {
	levels, err := h.voucherService.ListLevels(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: levels})
}

func (h *VoucherHandler) UpdateLevel(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.VoucherLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	level, err := h.voucherService.UpdateLevel(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Voucher level updated", Data: level})
}

func (h *VoucherHandler) DeleteLevel(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.voucherService.DeleteLevel(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Voucher level deleted"})
}
