package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleTeacher    UserRole = "teacher"
	RoleStaff      UserRole = "staff"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "superadmin"
)

// IsStaffLevel reports whether the role may fulfil redemptions.
func (r UserRole) IsStaffLevel() bool {
	return r == RoleStaff || r == RoleAdmin || r == RoleSuperAdmin
}

// CanUnlock reports whether the role may clear a quiz lock.
func (r UserRole) CanUnlock() bool {
	return r == RoleTeacher || r == RoleAdmin || r == RoleSuperAdmin
}

// User carries the identity shared by every role. Role-specific data lives in
// the profile rows so that invalid combinations (a teacher with a point
// balance, a student with assigned classes) cannot be represented.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,user_role"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Student *StudentProfile `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Teacher *TeacherProfile `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile holds the ledger-facing state of a student. Points never go
// below zero; every change is mirrored by a PointHistory row.
type StudentProfile struct {
	UserID  string  `json:"user_id" gorm:"primaryKey;size:255"`
	Grade   int     `json:"grade" gorm:"not null" validate:"required,min=1,max=13"`
	ClassID *string `json:"class_id" gorm:"size:255;index"`

	Points       int  `json:"points" gorm:"not null;default:0"`
	QuizVerified bool `json:"quiz_verified" gorm:"default:false;index"`
	QuizLocked   bool `json:"quiz_locked" gorm:"default:false"`
	QuizAttempts int  `json:"quiz_attempts" gorm:"default:0"`

	Achievements datatypes.JSON `json:"achievements" gorm:"type:jsonb"` // []string of achievement IDs

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

type TeacherProfile struct {
	UserID          string         `json:"user_id" gorm:"primaryKey;size:255"`
	Subject         string         `json:"subject" gorm:"size:100"`
	AssignedClasses datatypes.JSON `json:"assigned_classes" gorm:"type:jsonb"` // []string of class IDs

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

type Class struct {
	ID        string    `json:"id" gorm:"primaryKey;size:255"`
	Name      string    `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Grade     int       `json:"grade" gorm:"not null;index" validate:"required,min=1,max=13"`
	TeacherID *string   `json:"teacher_id" gorm:"size:255;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Class) TableName() string {
	return "classes"
}
