package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.TaskSubmission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := s.db.WithContext(ctx).
		Preload("Task").
		Preload("Student").
		First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByTaskAndStudent(ctx context.Context, taskID uint, studentID string) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := s.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.TaskSubmission, int64, error) {
	var submissions []*models.TaskSubmission
	var total int64

	query := s.db.WithContext(ctx).Model(&models.TaskSubmission{})
	if filters.TaskID != nil {
		query = query.Where("task_id = ?", *filters.TaskID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.
		Omit("attachment_data").
		Order("created_at DESC").
		Preload("Task").
		Preload("Student").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, submission *models.TaskSubmission) error {
	return s.db.WithContext(ctx).Save(submission).Error
}
