package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestValidator() *utils.Validator {
	return utils.NewValidator()
}

// memRepo is an in-memory repositories.Repository. WithTransaction snapshots
// all state and restores it when the callback fails, so rollback semantics
// hold in tests.
type memRepo struct {
	users       map[string]*models.User
	students    map[string]*models.StudentProfile
	tasks       map[uint]*models.Task
	submissions map[uint]*models.TaskSubmission
	vouchers    map[uint]*models.VoucherLevel
	redemptions map[uint]*models.Redemption
	history     []*models.PointHistory
	notifs      []*models.Notification

	nextID uint

	// failHistoryAppend forces the next history write to fail, for testing
	// that a redemption rolls back as one unit.
	failHistoryAppend bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:       make(map[string]*models.User),
		students:    make(map[string]*models.StudentProfile),
		tasks:       make(map[uint]*models.Task),
		submissions: make(map[uint]*models.TaskSubmission),
		vouchers:    make(map[uint]*models.VoucherLevel),
		redemptions: make(map[uint]*models.Redemption),
		nextID:      1,
	}
}

func (r *memRepo) id() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *memRepo) addStudent(id string, points int, verified bool) *models.StudentProfile {
	r.users[id] = &models.User{ID: id, FullName: "Student " + id, Email: id + "@school.ac.ae", Role: models.RoleStudent, IsActive: true}
	r.students[id] = &models.StudentProfile{UserID: id, Grade: 9, Points: points, QuizVerified: verified}
	// Seed balances get a matching history entry so the balance always
	// equals the sum of deltas, same as production writes.
	if points != 0 {
		r.history = append(r.history, &models.PointHistory{
			ID:        r.id(),
			UserID:    id,
			Amount:    points,
			Reason:    "Seed balance",
			Type:      models.HistoryAwarded,
			CreatedAt: time.Now(),
		})
	}
	return r.students[id]
}

func (r *memRepo) addVoucher(name string, cost int) *models.VoucherLevel {
	v := &models.VoucherLevel{ID: r.id(), Name: name, Cost: cost, ValueAED: cost / 10}
	r.vouchers[v.ID] = v
	return v
}

func (r *memRepo) historySum(userID string) int {
	sum := 0
	for _, h := range r.history {
		if h.UserID == userID {
			sum += h.Amount
		}
	}
	return sum
}

func (r *memRepo) Users() repositories.UserRepository                 { return (*memUsers)(r) }
func (r *memRepo) Tasks() repositories.TaskRepository                 { return (*memTasks)(r) }
func (r *memRepo) Submissions() repositories.SubmissionRepository     { return (*memSubmissions)(r) }
func (r *memRepo) Vouchers() repositories.VoucherRepository           { return (*memVouchers)(r) }
func (r *memRepo) Redemptions() repositories.RedemptionRepository     { return (*memRedemptions)(r) }
func (r *memRepo) History() repositories.HistoryRepository            { return (*memHistory)(r) }
func (r *memRepo) Notifications() repositories.NotificationRepository { return (*memNotifs)(r) }

func (r *memRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	snap := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	students    map[string]models.StudentProfile
	submissions map[uint]models.TaskSubmission
	redemptions map[uint]models.Redemption
	history     []*models.PointHistory
	nextID      uint
}

func (r *memRepo) snapshot() memSnapshot {
	s := memSnapshot{
		students:    make(map[string]models.StudentProfile, len(r.students)),
		submissions: make(map[uint]models.TaskSubmission, len(r.submissions)),
		redemptions: make(map[uint]models.Redemption, len(r.redemptions)),
		history:     append([]*models.PointHistory(nil), r.history...),
		nextID:      r.nextID,
	}
	for k, v := range r.students {
		s.students[k] = *v
	}
	for k, v := range r.submissions {
		s.submissions[k] = *v
	}
	for k, v := range r.redemptions {
		s.redemptions[k] = *v
	}
	return s
}

func (r *memRepo) restore(s memSnapshot) {
	r.students = make(map[string]*models.StudentProfile, len(s.students))
	for k, v := range s.students {
		v := v
		r.students[k] = &v
	}
	r.submissions = make(map[uint]*models.TaskSubmission, len(s.submissions))
	for k, v := range s.submissions {
		v := v
		r.submissions[k] = &v
	}
	r.redemptions = make(map[uint]*models.Redemption, len(s.redemptions))
	for k, v := range s.redemptions {
		v := v
		r.redemptions[k] = &v
	}
	r.history = s.history
	r.nextID = s.nextID
}

// ===== USERS =====

type memUsers memRepo

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.ID] = user
	if user.Student != nil {
		m.students[user.ID] = user.Student
	}
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s, ok := m.students[id]; ok {
		u.Student = s
	}
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memUsers) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memUsers) GetStudent(ctx context.Context, userID string) (*models.StudentProfile, error) {
	p, ok := m.students[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memUsers) GetStudentForUpdate(ctx context.Context, userID string) (*models.StudentProfile, error) {
	return m.GetStudent(ctx, userID)
}

func (m *memUsers) UpdateStudent(ctx context.Context, profile *models.StudentProfile) error {
	if _, ok := m.students[profile.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *profile
	m.students[profile.UserID] = &cp
	return nil
}

func (m *memUsers) ListVerifiedStudents(ctx context.Context) ([]*models.StudentProfile, error) {
	var out []*models.StudentProfile
	for _, p := range m.students {
		if !p.QuizVerified {
			continue
		}
		cp := *p
		if u, ok := m.users[p.UserID]; ok {
			cp.User = *u
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

// ===== TASKS =====

type memTasks memRepo

func (m *memTasks) Create(ctx context.Context, task *models.Task) error {
	task.ID = (*memRepo)(m).id()
	m.tasks[task.ID] = task
	return nil
}

func (m *memTasks) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (m *memTasks) List(ctx context.Context, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memTasks) Delete(ctx context.Context, id uint) error {
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) CountSubmissions(ctx context.Context, taskID uint) (int64, error) {
	var n int64
	for _, s := range m.submissions {
		if s.TaskID == taskID {
			n++
		}
	}
	return n, nil
}

// ===== SUBMISSIONS =====

type memSubmissions memRepo

func (m *memSubmissions) Create(ctx context.Context, submission *models.TaskSubmission) error {
	for _, s := range m.submissions {
		if s.TaskID == submission.TaskID && s.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = (*memRepo)(m).id()
	m.submissions[submission.ID] = submission
	return nil
}

func (m *memSubmissions) GetByID(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	s, ok := m.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	if t, ok := m.tasks[s.TaskID]; ok {
		cp.Task = *t
	}
	return &cp, nil
}

func (m *memSubmissions) GetByTaskAndStudent(ctx context.Context, taskID uint, studentID string) (*models.TaskSubmission, error) {
	for _, s := range m.submissions {
		if s.TaskID == taskID && s.StudentID == studentID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memSubmissions) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.TaskSubmission, int64, error) {
	var out []*models.TaskSubmission
	for _, s := range m.submissions {
		if filters.TaskID != nil && s.TaskID != *filters.TaskID {
			continue
		}
		if filters.StudentID != nil && s.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memSubmissions) Update(ctx context.Context, submission *models.TaskSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *submission
	m.submissions[submission.ID] = &cp
	return nil
}

// ===== VOUCHERS =====

type memVouchers memRepo

func (m *memVouchers) Create(ctx context.Context, level *models.VoucherLevel) error {
	for _, v := range m.vouchers {
		if v.Name == level.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	level.ID = (*memRepo)(m).id()
	m.vouchers[level.ID] = level
	return nil
}

func (m *memVouchers) GetByID(ctx context.Context, id uint) (*models.VoucherLevel, error) {
	v, ok := m.vouchers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (m *memVouchers) List(ctx context.Context) ([]*models.VoucherLevel, error) {
	var out []*models.VoucherLevel
	for _, v := range m.vouchers {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cost < out[j].Cost })
	return out, nil
}

func (m *memVouchers) Update(ctx context.Context, level *models.VoucherLevel) error {
	m.vouchers[level.ID] = level
	return nil
}

func (m *memVouchers) Delete(ctx context.Context, id uint) error {
	delete(m.vouchers, id)
	return nil
}

// ===== REDEMPTIONS =====

type memRedemptions memRepo

func (m *memRedemptions) Create(ctx context.Context, redemption *models.Redemption) error {
	for _, r := range m.redemptions {
		if r.Code == redemption.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	redemption.ID = (*memRepo)(m).id()
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}
	cp := *redemption
	m.redemptions[redemption.ID] = &cp
	return nil
}

func (m *memRedemptions) GetByID(ctx context.Context, id uint) (*models.Redemption, error) {
	r, ok := m.redemptions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRedemptions) GetByCode(ctx context.Context, code string) (*models.Redemption, error) {
	for _, r := range m.redemptions {
		if r.Code == code {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRedemptions) List(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.Redemption, int64, error) {
	var out []*models.Redemption
	for _, r := range m.redemptions {
		if filters.StudentID != nil && r.StudentID != *filters.StudentID {
			continue
		}
		if filters.Status != nil && r.Status != *filters.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memRedemptions) Update(ctx context.Context, redemption *models.Redemption) error {
	if _, ok := m.redemptions[redemption.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *redemption
	m.redemptions[redemption.ID] = &cp
	return nil
}

// ===== HISTORY =====

type memHistory memRepo

func (m *memHistory) Append(ctx context.Context, entry *models.PointHistory) error {
	if m.failHistoryAppend {
		m.failHistoryAppend = false
		return gorm.ErrInvalidTransaction
	}
	entry.ID = (*memRepo)(m).id()
	entry.CreatedAt = time.Now()
	m.history = append(m.history, entry)
	return nil
}

func (m *memHistory) List(ctx context.Context, filters repositories.HistoryFilters) ([]*models.PointHistory, int64, error) {
	var out []*models.PointHistory
	for _, h := range m.history {
		if filters.UserID != nil && h.UserID != *filters.UserID {
			continue
		}
		out = append(out, h)
	}
	return out, int64(len(out)), nil
}

func (m *memHistory) SumByUser(ctx context.Context, userID string) (int, error) {
	return (*memRepo)(m).historySum(userID), nil
}

// ===== NOTIFICATIONS =====

type memNotifs memRepo

func (m *memNotifs) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = (*memRepo)(m).id()
	notification.CreatedAt = time.Now()
	m.notifs = append(m.notifs, notification)
	return nil
}

func (m *memNotifs) ListForRecipient(ctx context.Context, userID string, role models.UserRole, limit, offset int) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range m.notifs {
		if (n.RecipientID != nil && *n.RecipientID == userID) ||
			(n.RecipientRole != nil && *n.RecipientRole == role) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memNotifs) MarkRead(ctx context.Context, id uint, readAt time.Time) error {
	for _, n := range m.notifs {
		if n.ID == id {
			n.ReadAt = &readAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
