package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type RankingHandler struct {
	BaseHandler
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService, logger utils.Logger) *RankingHandler {
	return &RankingHandler{
		BaseHandler:    NewBaseHandler(logger),
		rankingService: rankingService,
	}
}

func (h *RankingHandler) GetRankings(c *gin.Context) {
	var classID *string
	if v := c.Query("class_id"); v != "" {
		classID = &v
	}

	rankings, err := h.rankingService.GetRankings(c.Request.Context(), QueryInt(c, "grade"), classID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: rankings})
}

// GetMyRank returns the caller's rank, or "?" when it is withheld.
func (h *RankingHandler) GetMyRank(c *gin.Context) {
	rank, err := h.rankingService.GetStudentRank(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: rank})
}

func (h *RankingHandler) GetStudentRank(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	rank, err := h.rankingService.GetStudentRank(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"student_id": studentID, "rank": rank}})
}
