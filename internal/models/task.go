package models

import (
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionApproved SubmissionStatus = "Approved"
	SubmissionRejected SubmissionStatus = "Rejected"
)

// Graded reports whether the submission has reached a terminal state.
func (s SubmissionStatus) Graded() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// MaxAttachmentSize caps inline task attachments at 5 MiB. Attachments are
// stored in-row rather than in a blob store; the cap keeps that workable.
const MaxAttachmentSize = 5 << 20

type Task struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Title   string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Grade   int     `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	ClassID *string `json:"class_id" gorm:"size:255;index"`

	Points    int        `json:"points" gorm:"not null" validate:"required,min=1,max=10000"`
	MaxScore  int        `json:"max_score" gorm:"not null" validate:"required,min=1,max=1000"`
	Deadline  *time.Time `json:"deadline"`
	TimeLimit *int       `json:"time_limit" validate:"omitempty,min=1"` // minutes

	AttachmentName *string `json:"attachment_name" gorm:"size:255"`
	AttachmentMime *string `json:"attachment_mime" gorm:"size:100"`
	AttachmentData []byte  `json:"-" gorm:"type:bytea"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Creator     User             `json:"creator" gorm:"foreignKey:CreatedBy"`
	Submissions []TaskSubmission `json:"submissions,omitempty" gorm:"foreignKey:TaskID"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskSubmission links a student to a task. The unique index on
// (task_id, student_id) enforces the one-submission rule at the store level.
type TaskSubmission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TaskID    uint   `json:"task_id" gorm:"not null;uniqueIndex:idx_task_student"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_task_student"`

	Content        string  `json:"content" gorm:"type:text"`
	AttachmentName *string `json:"attachment_name" gorm:"size:255"`
	AttachmentMime *string `json:"attachment_mime" gorm:"size:100"`
	AttachmentData []byte  `json:"-" gorm:"type:bytea"`

	Status SubmissionStatus `json:"status" gorm:"not null;default:Pending;index"`

	// Set when the submission is graded, terminal afterwards.
	AwardedScore  *int       `json:"awarded_score"`
	AwardedPoints int        `json:"awarded_points" gorm:"default:0"`
	GradedBy      *string    `json:"graded_by" gorm:"size:255"`
	GradedAt      *time.Time `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Task    Task `json:"task" gorm:"foreignKey:TaskID"`
	Student User `json:"student" gorm:"foreignKey:StudentID"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}
