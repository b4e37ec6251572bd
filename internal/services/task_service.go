package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type CreateTaskRequest struct {
	Title     string     `json:"title" validate:"required,min=1,max=200"`
	Grade     int        `json:"grade" validate:"required,min=1,max=13"`
	ClassID   *string    `json:"class_id"`
	Points    int        `json:"points" validate:"required,min=1,max=10000"`
	MaxScore  int        `json:"max_score" validate:"required,min=1,max=1000"`
	Deadline  *time.Time `json:"deadline"`
	TimeLimit *int       `json:"time_limit" validate:"omitempty,min=1"`

	AttachmentName *string `json:"attachment_name"`
	AttachmentMime *string `json:"attachment_mime"`
	AttachmentData []byte  `json:"attachment_data" validate:"omitempty,attachment_size"`
}

type SubmitTaskRequest struct {
	Content string `json:"content" validate:"required,min=1"`

	AttachmentName *string `json:"attachment_name"`
	AttachmentMime *string `json:"attachment_mime"`
	AttachmentData []byte  `json:"attachment_data" validate:"omitempty,attachment_size"`
}

// TaskService manages tasks and their submissions. Grading lives in the
// ledger service because it moves points; everything up to that point is here.
type TaskService interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest, creatorID string) (*models.Task, error)
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	// ListTasks omits attachment payloads.
	ListTasks(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error)
	// DeleteTask refuses once any submission exists; a task with submissions
	// is immutable.
	DeleteTask(ctx context.Context, id uint, actorID string) error

	// Submit records a student's one submission for a task. A second
	// submission for the same task is refused.
	Submit(ctx context.Context, taskID uint, studentID string, req *SubmitTaskRequest) (*models.TaskSubmission, error)
	GetSubmission(ctx context.Context, id uint) (*models.TaskSubmission, error)
	ListSubmissions(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.TaskSubmission, int64, error)
}

type taskService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator

	now func() time.Time
}

func NewTaskService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) TaskService {
	return &taskService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req *CreateTaskRequest, creatorID string) (*models.Task, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.AttachmentData) > models.MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	task := &models.Task{
		Title:          req.Title,
		Grade:          req.Grade,
		ClassID:        req.ClassID,
		Points:         req.Points,
		MaxScore:       req.MaxScore,
		Deadline:       req.Deadline,
		TimeLimit:      req.TimeLimit,
		AttachmentName: req.AttachmentName,
		AttachmentMime: req.AttachmentMime,
		AttachmentData: req.AttachmentData,
		CreatedBy:      creatorID,
	}
	if err := s.repo.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created",
		"task_id", task.ID,
		"title", task.Title,
		"grade", task.Grade,
		"creator_id", creatorID)
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.repo.Tasks().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	return s.repo.Tasks().List(ctx, filters)
}

func (s *taskService) DeleteTask(ctx context.Context, id uint, actorID string) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Tasks().CountSubmissions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if count > 0 {
		return ErrTaskHasSubmissions
	}

	if err := s.repo.Tasks().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("Task deleted", "task_id", id, "actor_id", actorID)
	return nil
}

func (s *taskService) Submit(ctx context.Context, taskID uint, studentID string, req *SubmitTaskRequest) (*models.TaskSubmission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.AttachmentData) > models.MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Deadline != nil && s.now().After(*task.Deadline) {
		return nil, ErrDeadlinePassed
	}

	if _, err := s.repo.Users().GetStudent(ctx, studentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAStudent
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	submission := &models.TaskSubmission{
		TaskID:         taskID,
		StudentID:      studentID,
		Content:        req.Content,
		AttachmentName: req.AttachmentName,
		AttachmentMime: req.AttachmentMime,
		AttachmentData: req.AttachmentData,
		Status:         models.SubmissionPending,
	}
	if err := s.repo.Submissions().Create(ctx, submission); err != nil {
		// The unique index on (task_id, student_id) is the real guard; the
		// duplicate surfaces here regardless of request interleaving.
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info("Submission received",
		"submission_id", submission.ID,
		"task_id", taskID,
		"student_id", studentID)
	return submission, nil
}

func (s *taskService) GetSubmission(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	submission, err := s.repo.Submissions().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *taskService) ListSubmissions(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.TaskSubmission, int64, error) {
	return s.repo.Submissions().List(ctx, filters)
}
