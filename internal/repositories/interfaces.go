package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/nexlearn/campus-rewards/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. WithTransaction hands
// the callback a Repository bound to one database transaction; returning an
// error rolls everything back. The redemption flow depends on this: balance
// decrement, history append and redemption insert commit together or not at
// all.
type Repository interface {
	Users() UserRepository
	Tasks() TaskRepository
	Submissions() SubmissionRepository
	Vouchers() VoucherRepository
	Redemptions() RedemptionRepository
	History() HistoryRepository
	Notifications() NotificationRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	GetStudent(ctx context.Context, userID string) (*models.StudentProfile, error)
	// GetStudentForUpdate loads the profile row under a row-level write lock.
	// Only meaningful inside WithTransaction.
	GetStudentForUpdate(ctx context.Context, userID string) (*models.StudentProfile, error)
	UpdateStudent(ctx context.Context, profile *models.StudentProfile) error
	// ListVerifiedStudents returns every quiz-verified student with the user
	// row preloaded, for ranking derivation.
	ListVerifiedStudents(ctx context.Context) ([]*models.StudentProfile, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	List(ctx context.Context, filters TaskFilters) ([]*models.Task, int64, error)
	Delete(ctx context.Context, id uint) error
	CountSubmissions(ctx context.Context, taskID uint) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.TaskSubmission) error
	GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error)
	GetByTaskAndStudent(ctx context.Context, taskID uint, studentID string) (*models.TaskSubmission, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.TaskSubmission, int64, error)
	Update(ctx context.Context, submission *models.TaskSubmission) error
}

type VoucherRepository interface {
	Create(ctx context.Context, level *models.VoucherLevel) error
	GetByID(ctx context.Context, id uint) (*models.VoucherLevel, error)
	List(ctx context.Context) ([]*models.VoucherLevel, error)
	Update(ctx context.Context, level *models.VoucherLevel) error
	Delete(ctx context.Context, id uint) error
}

type RedemptionRepository interface {
	Create(ctx context.Context, redemption *models.Redemption) error
	GetByID(ctx context.Context, id uint) (*models.Redemption, error)
	GetByCode(ctx context.Context, code string) (*models.Redemption, error)
	List(ctx context.Context, filters RedemptionFilters) ([]*models.Redemption, int64, error)
	Update(ctx context.Context, redemption *models.Redemption) error
}

// HistoryRepository is append-and-read only. There is deliberately no update
// or delete: the ledger is immutable.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.PointHistory) error
	List(ctx context.Context, filters HistoryFilters) ([]*models.PointHistory, int64, error)
	// SumByUser returns the signed sum of all deltas for one user, used to
	// reconcile the balance invariant.
	SumByUser(ctx context.Context, userID string) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForRecipient(ctx context.Context, userID string, role models.UserRole, limit, offset int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id uint, readAt time.Time) error
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Grade     *int             `json:"grade"`
	ClassID   *string          `json:"class_id"`
	Search    string           `json:"search"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "full_name", "email"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type TaskFilters struct {
	Grade     *int       `json:"grade"`
	ClassID   *string    `json:"class_id"`
	CreatedBy *string    `json:"created_by"`
	DueBefore *time.Time `json:"due_before"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type SubmissionFilters struct {
	TaskID    *uint                    `json:"task_id"`
	StudentID *string                  `json:"student_id"`
	Status    *models.SubmissionStatus `json:"status"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

type RedemptionFilters struct {
	StudentID *string                  `json:"student_id"`
	Status    *models.RedemptionStatus `json:"status"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

type HistoryFilters struct {
	UserID *string             `json:"user_id"`
	Type   *models.HistoryType `json:"type"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// IsNotFoundError reports whether err is the store's missing-record error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
