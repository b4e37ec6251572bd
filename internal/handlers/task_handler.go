package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexlearn/campus-rewards/internal/auth"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/services"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type TaskHandler struct {
	BaseHandler
	taskService   services.TaskService
	ledgerService services.LedgerService
}

type GradeSubmissionRequest struct {
	Score int `json:"score" validate:"min=0"`
}

func NewTaskHandler(taskService services.TaskService, ledgerService services.LedgerService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler:   NewBaseHandler(logger),
		taskService:   taskService,
		ledgerService: ledgerService,
	}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating task", "title", req.Title)

	task, err := h.taskService.CreateTask(c.Request.Context(), &req, auth.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Task created", Data: task})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: task})
}

// GetTaskAttachment streams the task's inline attachment.
func (h *TaskHandler) GetTaskAttachment(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if len(task.AttachmentData) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "task has no attachment"})
		return
	}

	mime := "application/octet-stream"
	if task.AttachmentMime != nil {
		mime = *task.AttachmentMime
	}
	if task.AttachmentName != nil {
		c.Header("Content-Disposition", `attachment; filename="`+*task.AttachmentName+`"`)
	}
	c.Data(http.StatusOK, mime, task.AttachmentData)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	filters := repositories.TaskFilters{
		Grade:  QueryInt(c, "grade"),
		SortBy: c.Query("sort_by"),
	}
	filters.Limit, filters.Offset = Pagination(c)
	if classID := c.Query("class_id"); classID != "" {
		filters.ClassID = &classID
	}
	if creator := c.Query("created_by"); creator != "" {
		filters.CreatedBy = &creator
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: tasks, Total: total})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting task", "task_id", id)

	if err := h.taskService.DeleteTask(c.Request.Context(), id, auth.CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Task deleted"})
}

// ===== SUBMISSIONS =====

func (h *TaskHandler) SubmitTask(c *gin.Context) {
	taskID := ParseUintParam(c, "id")
	if taskID == 0 {
		return
	}

	var req services.SubmitTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID := auth.CurrentUserID(c)
	h.LogRequest(c, "Submitting task", "task_id", taskID, "student_id", studentID)

	submission, err := h.taskService.Submit(c.Request.Context(), taskID, studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Submission received", Data: submission})
}

func (h *TaskHandler) ListSubmissions(c *gin.Context) {
	filters := repositories.SubmissionFilters{}
	filters.Limit, filters.Offset = Pagination(c)
	if taskID := QueryInt(c, "task_id"); taskID != nil {
		id := uint(*taskID)
		filters.TaskID = &id
	}
	if status := c.Query("status"); status != "" {
		st := models.SubmissionStatus(status)
		filters.Status = &st
	}

	// Students only ever see their own submissions.
	if auth.CurrentUserRole(c) == models.RoleStudent {
		studentID := auth.CurrentUserID(c)
		filters.StudentID = &studentID
	} else if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	submissions, total, err := h.taskService.ListSubmissions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: submissions, Total: total})
}

func (h *TaskHandler) GetSubmission(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.taskService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if auth.CurrentUserRole(c) == models.RoleStudent && submission.StudentID != auth.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "not your submission"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: submission})
}

// GradeSubmission approves a submission with a score; the ledger converts it
// to points.
func (h *TaskHandler) GradeSubmission(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	graderID := auth.CurrentUserID(c)
	h.LogRequest(c, "Grading submission", "submission_id", id, "score", req.Score)

	submission, err := h.ledgerService.AwardFromGrading(c.Request.Context(), id, req.Score, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Submission graded", Data: submission})
}

func (h *TaskHandler) RejectSubmission(c *gin.Context) {
	id := ParseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Rejecting submission", "submission_id", id)

	submission, err := h.ledgerService.RejectSubmission(c.Request.Context(), id, auth.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Submission rejected", Data: submission})
}
