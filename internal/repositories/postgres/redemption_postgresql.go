package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type RedemptionPostgreSQL struct {
	db *gorm.DB
}

func NewRedemptionPostgreSQL(db *gorm.DB) repositories.RedemptionRepository {
	return &RedemptionPostgreSQL{db: db}
}

func (r *RedemptionPostgreSQL) Create(ctx context.Context, redemption *models.Redemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *RedemptionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("VoucherLevel").
		First(&redemption, id).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *RedemptionPostgreSQL) GetByCode(ctx context.Context, code string) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("VoucherLevel").
		First(&redemption, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *RedemptionPostgreSQL) List(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.Redemption, int64, error) {
	var redemptions []*models.Redemption
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Redemption{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filters.Limit, filters.Offset)
	if err := query.
		Order("created_at DESC").
		Preload("Student").
		Preload("VoucherLevel").
		Find(&redemptions).Error; err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}

func (r *RedemptionPostgreSQL) Update(ctx context.Context, redemption *models.Redemption) error {
	return r.db.WithContext(ctx).Save(redemption).Error
}
