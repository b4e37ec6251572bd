package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type TaskPostgreSQL struct {
	db *gorm.DB
}

func NewTaskPostgreSQL(db *gorm.DB) repositories.TaskRepository {
	return &TaskPostgreSQL{db: db}
}

func (t *TaskPostgreSQL) Create(ctx context.Context, task *models.Task) error {
	return t.db.WithContext(ctx).Create(task).Error
}

func (t *TaskPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := t.db.WithContext(ctx).Preload("Creator").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TaskPostgreSQL) List(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	var tasks []*models.Task
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Task{})
	query = t.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	query = applySort(query, filters.SortBy, filters.SortOrder, "created_at")

	// Attachment bytes stay out of list responses.
	if err := query.Omit("attachment_data").Preload("Creator").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (t *TaskPostgreSQL) Delete(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (t *TaskPostgreSQL) CountSubmissions(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

func (t *TaskPostgreSQL) applyFilters(query *gorm.DB, filters repositories.TaskFilters) *gorm.DB {
	if filters.Grade != nil {
		query = query.Where("grade = ?", *filters.Grade)
	}
	if filters.ClassID != nil {
		// Tasks without a class target the whole grade.
		query = query.Where("class_id = ? OR class_id IS NULL", *filters.ClassID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DueBefore != nil {
		query = query.Where("deadline IS NOT NULL AND deadline <= ?", *filters.DueBefore)
	}
	return query
}
