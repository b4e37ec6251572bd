package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

type VoucherLevelRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Cost     int    `json:"cost" validate:"required,min=1"`
	ValueAED int    `json:"value_aed" validate:"required,min=1"`
}

// VoucherService manages the redeemable voucher catalogue. Redemption itself
// is a ledger operation.
type VoucherService interface {
	CreateLevel(ctx context.Context, req *VoucherLevelRequest) (*models.VoucherLevel, error)
	ListLevels(ctx context.Context) ([]*models.VoucherLevel, error)
	UpdateLevel(ctx context.Context, id uint, req *VoucherLevelRequest) (*models.VoucherLevel, error)
	DeleteLevel(ctx context.Context, id uint) error
}

type voucherService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewVoucherService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) VoucherService {
	return &voucherService{repo: repo, logger: logger, validator: validator}
}

func (s *voucherService) CreateLevel(ctx context.Context, req *VoucherLevelRequest) (*models.VoucherLevel, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	level := &models.VoucherLevel{
		Name:     req.Name,
		Cost:     req.Cost,
		ValueAED: req.ValueAED,
	}
	if err := s.repo.Vouchers().Create(ctx, level); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create voucher level: %w", err)
	}

	s.logger.Info("Voucher level created", "name", level.Name, "cost", level.Cost)
	return level, nil
}

func (s *voucherService) ListLevels(ctx context.Context) ([]*models.VoucherLevel, error) {
	return s.repo.Vouchers().List(ctx)
}

func (s *voucherService) UpdateLevel(ctx context.Context, id uint, req *VoucherLevelRequest) (*models.VoucherLevel, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	level, err := s.repo.Vouchers().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("failed to get voucher level: %w", err)
	}

	level.Name = req.Name
	level.Cost = req.Cost
	level.ValueAED = req.ValueAED
	if err := s.repo.Vouchers().Update(ctx, level); err != nil {
		return nil, fmt.Errorf("failed to update voucher level: %w", err)
	}

	s.logger.Info("Voucher level updated", "voucher_level_id", id)
	return level, nil
}

func (s *voucherService) DeleteLevel(ctx context.Context, id uint) error {
	if _, err := s.repo.Vouchers().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrVoucherNotFound
		}
		return fmt.Errorf("failed to get voucher level: %w", err)
	}
	if err := s.repo.Vouchers().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete voucher level: %w", err)
	}
	s.logger.Info("Voucher level deleted", "voucher_level_id", id)
	return nil
}
