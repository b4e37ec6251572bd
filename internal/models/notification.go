package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string
type NotificationPriority int

const (
	NotificationQuizViolation       NotificationType = "quiz_violation"
	NotificationQuizCompleted       NotificationType = "quiz_completed"
	NotificationSubmissionGraded    NotificationType = "submission_graded"
	NotificationRedemptionCreated   NotificationType = "redemption_created"
	NotificationRedemptionProcessed NotificationType = "redemption_processed"
	NotificationPointsAdjusted      NotificationType = "points_adjusted"

	PriorityLow      NotificationPriority = 1
	PriorityNormal   NotificationPriority = 2
	PriorityHigh     NotificationPriority = 3
	PriorityCritical NotificationPriority = 4
)

type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	Type    NotificationType `json:"type" gorm:"not null;index"`
	Title   string           `json:"title" gorm:"not null;size:255"`
	Message string           `json:"message" gorm:"type:text"`

	// Either a specific user or everyone holding a role.
	RecipientID   *string   `json:"recipient_id" gorm:"size:255;index"`
	RecipientRole *UserRole `json:"recipient_role" gorm:"size:20"`

	// Related entities, set where applicable.
	StudentID    *string `json:"student_id" gorm:"size:255;index"`
	RedemptionID *uint   `json:"redemption_id" gorm:"index"`
	SubmissionID *uint   `json:"submission_id" gorm:"index"`

	Data     datatypes.JSON       `json:"data" gorm:"type:jsonb"`
	Priority NotificationPriority `json:"priority" gorm:"default:2"`

	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
