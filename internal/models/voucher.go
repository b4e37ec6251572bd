package models

import (
	"time"

	"gorm.io/gorm"
)

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "Pending"
	RedemptionUsed     RedemptionStatus = "Used"
	RedemptionRejected RedemptionStatus = "Rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s RedemptionStatus) Terminal() bool {
	return s == RedemptionUsed || s == RedemptionRejected
}

// RedemptionTTL is how long a pending redemption stays claimable. After this
// window it may still be rejected but must never be marked Used.
const RedemptionTTL = 7 * 24 * time.Hour

// RedemptionCodeLength is the length of the uppercase alphanumeric claim code.
const RedemptionCodeLength = 6

// VoucherLevel is a catalog entry a student can redeem points against.
type VoucherLevel struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`
	Cost     int    `json:"cost" gorm:"not null" validate:"required,min=1"`
	ValueAED int    `json:"value_aed" gorm:"not null" validate:"required,min=1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (VoucherLevel) TableName() string {
	return "voucher_levels"
}

type Redemption struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	StudentID      string `json:"student_id" gorm:"not null;size:255;index"`
	VoucherLevelID uint   `json:"voucher_level_id" gorm:"not null;index"`

	Code   string           `json:"code" gorm:"not null;size:6;uniqueIndex"`
	Status RedemptionStatus `json:"status" gorm:"not null;default:Pending;index"`

	ProcessedBy *string    `json:"processed_by" gorm:"size:255"`
	ProcessedAt *time.Time `json:"processed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student      User         `json:"student" gorm:"foreignKey:StudentID"`
	VoucherLevel VoucherLevel `json:"voucher_level" gorm:"foreignKey:VoucherLevelID"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

// Expired reports whether a pending redemption has outlived its claim window.
// Terminal redemptions never expire; they are already settled.
func (r *Redemption) Expired(now time.Time) bool {
	return r.Status == RedemptionPending && now.Sub(r.CreatedAt) > RedemptionTTL
}
