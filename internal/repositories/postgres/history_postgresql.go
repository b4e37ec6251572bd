package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type HistoryPostgreSQL struct {
	db *gorm.DB
}

func NewHistoryPostgreSQL(db *gorm.DB) repositories.HistoryRepository {
	return &HistoryPostgreSQL{db: db}
}

func (h *HistoryPostgreSQL) Append(ctx context.Context, entry *models.PointHistory) error {
	return h.db.WithContext(ctx).Create(entry).Error
}

func (h *HistoryPostgreSQL) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.PointHistory, int64, error) {
	var entries []*models.PointHistory
	var total int64

	query := h.db.WithContext(ctx).Model(&models.PointHistory{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (h *HistoryPostgreSQL) SumByUser(ctx context.Context, userID string) (int, error) {
	var sum *int
	err := h.db.WithContext(ctx).
		Model(&models.PointHistory{}).
		Select("SUM(amount)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
