package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type VoucherPostgreSQL struct {
	db *gorm.DB
}

func NewVoucherPostgreSQL(db *gorm.DB) repositories.VoucherRepository {
	return &VoucherPostgreSQL{db: db}
}

func (v *VoucherPostgreSQL) Create(ctx context.Context, level *models.VoucherLevel) error {
	return v.db.WithContext(ctx).Create(level).Error
}

func (v *VoucherPostgreSQL) GetByID(ctx context.Context, id uint) (*models.VoucherLevel, error) {
	var level models.VoucherLevel
	if err := v.db.WithContext(ctx).First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (v *VoucherPostgreSQL) List(ctx context.Context) ([]*models.VoucherLevel, error) {
	var levels []*models.VoucherLevel
	if err := v.db.WithContext(ctx).Order("cost ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (v *VoucherPostgreSQL) Update(ctx context.Context, level *models.VoucherLevel) error {
	return v.db.WithContext(ctx).Save(level).Error
}

func (v *VoucherPostgreSQL) Delete(ctx context.Context, id uint) error {
	return v.db.WithContext(ctx).Delete(&models.VoucherLevel{}, id).Error
}
