package postgres

import (
	"context"

	"github.com/nexlearn/campus-rewards/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db            *gorm.DB
	users         repositories.UserRepository
	tasks         repositories.TaskRepository
	submissions   repositories.SubmissionRepository
	vouchers      repositories.VoucherRepository
	redemptions   repositories.RedemptionRepository
	history       repositories.HistoryRepository
	notifications repositories.NotificationRepository
}

// New builds the PostgreSQL-backed repository aggregate.
func New(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:            db,
		users:         NewUserPostgreSQL(db),
		tasks:         NewTaskPostgreSQL(db),
		submissions:   NewSubmissionPostgreSQL(db),
		vouchers:      NewVoucherPostgreSQL(db),
		redemptions:   NewRedemptionPostgreSQL(db),
		history:       NewHistoryPostgreSQL(db),
		notifications: NewNotificationPostgreSQL(db),
	}
}

func (r *gormRepository) Users() repositories.UserRepository                 { return r.users }
func (r *gormRepository) Tasks() repositories.TaskRepository                 { return r.tasks }
func (r *gormRepository) Submissions() repositories.SubmissionRepository     { return r.submissions }
func (r *gormRepository) Vouchers() repositories.VoucherRepository           { return r.vouchers }
func (r *gormRepository) Redemptions() repositories.RedemptionRepository     { return r.redemptions }
func (r *gormRepository) History() repositories.HistoryRepository            { return r.history }
func (r *gormRepository) Notifications() repositories.NotificationRepository { return r.notifications }

func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
