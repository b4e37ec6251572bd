package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/quiz"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type FocusEventRequest struct {
	Event   string `json:"event" validate:"required,oneof=focus_lost focus_regained hidden"`
	Surface string `json:"surface" validate:"omitempty,oneof=quiz tasks"`
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

func (h *QuizHandler) StartQuiz(c *gin.Context) {
	studentID := auth.CurrentUserID(c)
	h.LogRequest(c, "Starting quiz", "student_id", studentID)

	view, err := h.quizService.StartQuiz(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Quiz started", Data: view})
}

func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.quizService.SubmitAnswer(c.Request.Context(), auth.CurrentUserID(c), req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// ReportFocusEvent receives focus/visibility signals from the client surface.
func (h *QuizHandler) ReportFocusEvent(c *gin.Context) {
	var req FocusEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	surface := req.Surface
	if surface == "" {
		surface = services.SurfaceQuiz
	}

	state, err := h.quizService.ReportFocusEvent(c.Request.Context(), auth.CurrentUserID(c), surface, quiz.FocusEvent(req.Event))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"state": state.String()}})
}

func (h *QuizHandler) AbandonQuiz(c *gin.Context) {
	if err := h.quizService.AbandonQuiz(c.Request.Context(), auth.CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz abandoned"})
}

func (h *QuizHandler) GetStatus(c *gin.Context) {
	status, err := h.quizService.GetStatus(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: status})
}

// UnlockStudent clears a violation lock. Teacher and admin roles only,
// enforced by the route group.
func (h *QuizHandler) UnlockStudent(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	actorID := auth.CurrentUserID(c)
	h.LogRequest(c, "Unlocking student", "student_id", studentID, "actor_id", actorID)

	profile, err := h.quizService.Unlock(c.Request.Context(), studentID, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Student unlocked", Data: profile})
}
