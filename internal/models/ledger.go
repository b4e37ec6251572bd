package models

import "time"

type HistoryType string

const (
	HistoryAwarded  HistoryType = "Awarded"
	HistoryRedeemed HistoryType = "Redeemed"
)

// PointHistory is the append-only audit trail for a student's balance. Rows
// are never updated or deleted; the balance must always equal the sum of a
// student's deltas.
type PointHistory struct {
	ID     uint        `json:"id" gorm:"primaryKey"`
	UserID string      `json:"user_id" gorm:"not null;size:255;index"`
	Amount int         `json:"amount" gorm:"not null"` // signed delta
	Reason string      `json:"reason" gorm:"not null;size:255"`
	Type   HistoryType `json:"type" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (PointHistory) TableName() string {
	return "point_history"
}
