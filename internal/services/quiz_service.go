package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nexlearn/campus-rewards/internal/events"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/quiz"
	"github.com/nexlearn/campus-rewards/internal/repositories"
)

// Surfaces a focus event can originate from. Violations lock the account on
// either surface; MidQuiz on the published event tells staff which one.
const (
	SurfaceQuiz  = "quiz"
	SurfaceTasks = "tasks"
)

// QuestionView is what a student sees: prompt and advisory countdown, never
// the keywords the scorer matches against.
type QuestionView struct {
	Index            int             `json:"index"`
	Total            int             `json:"total"`
	Prompt           string          `json:"prompt"`
	Difficulty       quiz.Difficulty `json:"difficulty"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
}

// SubmitResult reports one answer's outcome. Next is nil once Done; Total is
// meaningful only when Done.
type SubmitResult struct {
	Done     bool          `json:"done"`
	Next     *QuestionView `json:"next,omitempty"`
	Total    int           `json:"total,omitempty"`
	Verified bool          `json:"verified,omitempty"`
}

// QuizStatus is the student-facing view of their verification standing.
type QuizStatus struct {
	Verified  bool          `json:"verified"`
	Locked    bool          `json:"locked"`
	Attempts  int           `json:"attempts"`
	InSession bool          `json:"in_session"`
	Current   *QuestionView `json:"current,omitempty"`
}

// QuizService runs verification sessions and the anti-cheat monitor. Sessions
// live only in memory: an abandoned or interrupted quiz is simply gone, which
// is itself a rule, not a limitation.
type QuizService interface {
	// StartQuiz begins a fresh session. A verified student is refused; a
	// locked student is refused until a staff unlock. Starting while a
	// session is already open discards the old one.
	StartQuiz(ctx context.Context, studentID string) (*QuestionView, error)
	// SubmitAnswer scores the current question's answer. Completing the
	// final question credits the ledger and verifies the student.
	SubmitAnswer(ctx context.Context, studentID, answer string) (*SubmitResult, error)
	// ReportFocusEvent feeds a focus signal into the student's monitor and
	// locks the account when the state machine says so.
	ReportFocusEvent(ctx context.Context, studentID, surface string, event quiz.FocusEvent) (quiz.ProctorState, error)
	// AbandonQuiz discards the open session without credit.
	AbandonQuiz(ctx context.Context, studentID string) error
	// Unlock clears a lock so the student may retry. Staff-level only,
	// enforced by the caller.
	Unlock(ctx context.Context, studentID, actorID string) (*models.StudentProfile, error)
	GetStatus(ctx context.Context, studentID string) (*QuizStatus, error)
}

// activeQuiz pairs one in-flight session with its proctor monitor.
type activeQuiz struct {
	session *quiz.Session
	monitor *quiz.ProctorMonitor
}

type quizService struct {
	repo      repositories.Repository
	ledger    LedgerService
	logger    *slog.Logger
	publisher events.Publisher

	mu     sync.Mutex
	active map[string]*activeQuiz
	// monitors holds out-of-session proctor monitors for the tasks surface.
	monitors map[string]*quiz.ProctorMonitor

	pool []quiz.Question
	rng  *rand.Rand
	now  func() time.Time
}

func NewQuizService(
	repo repositories.Repository,
	ledger LedgerService,
	logger *slog.Logger,
	publisher events.Publisher,
) QuizService {
	return &quizService{
		repo:      repo,
		ledger:    ledger,
		logger:    logger,
		publisher: publisher,
		active:    make(map[string]*activeQuiz),
		monitors:  make(map[string]*quiz.ProctorMonitor),
		pool:      quiz.DefaultPool(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

func (s *quizService) StartQuiz(ctx context.Context, studentID string) (*QuestionView, error) {
	profile, err := s.getProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if profile.QuizLocked {
		return nil, ErrQuizLocked
	}
	if profile.QuizVerified {
		return nil, ErrQuizAlreadyVerified
	}

	s.mu.Lock()
	if old, ok := s.active[studentID]; ok {
		old.session.Abort()
	}
	questions := quiz.SelectQuestions(s.pool, s.rng)
	aq := &activeQuiz{
		session: quiz.NewSession(questions, s.now, nil),
		monitor: quiz.NewProctorMonitor(s.now, nil),
	}
	s.active[studentID] = aq
	view := s.currentView(aq.session)
	s.mu.Unlock()

	s.logger.Info("Quiz session started", "student_id", studentID, "questions", len(questions))
	return view, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, studentID, answer string) (*SubmitResult, error) {
	s.mu.Lock()
	aq, ok := s.active[studentID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoActiveQuiz
	}
	if aq.monitor.Locked() {
		s.mu.Unlock()
		return nil, ErrQuizLocked
	}

	done, err := aq.session.Submit(answer)
	if err != nil {
		s.mu.Unlock()
		switch err {
		case quiz.ErrAnswerTooShort:
			return nil, NewValidationError("answer", "must be at least 15 characters", utf8.RuneCountInString(answer))
		case quiz.ErrSessionAborted, quiz.ErrSessionCompleted:
			return nil, ErrNoActiveQuiz
		}
		return nil, err
	}

	if !done {
		view := s.currentView(aq.session)
		s.mu.Unlock()
		return &SubmitResult{Next: view}, nil
	}

	total, _ := aq.session.Total()
	delete(s.active, studentID)
	s.mu.Unlock()

	// The session is complete; credit and verification go through the
	// ledger so balance and history stay consistent.
	if _, err := s.ledger.AwardFromQuiz(ctx, studentID, total); err != nil {
		return nil, fmt.Errorf("failed to credit quiz: %w", err)
	}

	s.logger.Info("Quiz completed", "student_id", studentID, "total", total)
	return &SubmitResult{Done: true, Total: total, Verified: true}, nil
}

func (s *quizService) ReportFocusEvent(ctx context.Context, studentID, surface string, event quiz.FocusEvent) (quiz.ProctorState, error) {
	profile, err := s.getProfile(ctx, studentID)
	if err != nil {
		return quiz.StateLocked, err
	}
	if profile.QuizLocked {
		// Already locked; events on a locked account are ignored.
		return quiz.StateLocked, nil
	}

	s.mu.Lock()
	aq, midQuiz := s.active[studentID]
	var monitor *quiz.ProctorMonitor
	if midQuiz {
		monitor = aq.monitor
	} else {
		// Task-surface proctoring runs without a session. The monitor is
		// kept across events so Suspected survives until the next signal.
		monitor = s.standaloneMonitor(studentID)
	}

	wasLocked := monitor.Locked()
	state := monitor.HandleEvent(event)
	if state == quiz.StateLocked && !wasLocked {
		if midQuiz {
			aq.session.Abort()
			delete(s.active, studentID)
		}
		s.mu.Unlock()
		if err := s.lockStudent(ctx, profile, surface, event, midQuiz); err != nil {
			return state, err
		}
		return state, nil
	}
	s.mu.Unlock()
	return state, nil
}

func (s *quizService) AbandonQuiz(ctx context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	aq, ok := s.active[studentID]
	if !ok {
		return ErrNoActiveQuiz
	}
	aq.session.Abort()
	delete(s.active, studentID)
	s.logger.Info("Quiz abandoned", "student_id", studentID)
	return nil
}

func (s *quizService) Unlock(ctx context.Context, studentID, actorID string) (*models.StudentProfile, error) {
	profile, err := s.getProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !profile.QuizLocked {
		return nil, ErrQuizNotLocked
	}

	profile.QuizLocked = false
	if err := s.repo.Users().UpdateStudent(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to unlock student: %w", err)
	}

	s.mu.Lock()
	delete(s.active, studentID)
	delete(s.monitors, studentID)
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, events.NewEvent(events.EventQuizUnlocked, events.QuizUnlockedEvent{
		StudentID: studentID,
		ActorID:   actorID,
	})); err != nil {
		s.logger.Error("Failed to publish unlock event", "error", err)
	}

	s.logger.Info("Student unlocked", "student_id", studentID, "actor_id", actorID)
	return profile, nil
}

func (s *quizService) GetStatus(ctx context.Context, studentID string) (*QuizStatus, error) {
	profile, err := s.getProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}

	status := &QuizStatus{
		Verified: profile.QuizVerified,
		Locked:   profile.QuizLocked,
		Attempts: profile.QuizAttempts,
	}

	s.mu.Lock()
	if aq, ok := s.active[studentID]; ok {
		status.InSession = true
		status.Current = s.currentView(aq.session)
	}
	s.mu.Unlock()
	return status, nil
}

// ===== INTERNAL =====

func (s *quizService) getProfile(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	profile, err := s.repo.Users().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotAStudent
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return profile, nil
}

// standaloneMonitor returns the out-of-session monitor for a student,
// creating it on first use. Caller holds s.mu.
func (s *quizService) standaloneMonitor(studentID string) *quiz.ProctorMonitor {
	if m, ok := s.monitors[studentID]; ok {
		return m
	}
	m := quiz.NewProctorMonitor(s.now, nil)
	s.monitors[studentID] = m
	return m
}

// currentView renders the session's pending question. Caller holds s.mu.
func (s *quizService) currentView(session *quiz.Session) *QuestionView {
	q, ok := session.Current()
	if !ok {
		return nil
	}
	answered, total := session.Progress()
	return &QuestionView{
		Index:            answered + 1,
		Total:            total,
		Prompt:           q.Prompt,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimit(),
	}
}

// lockStudent persists the lock flag, notifies staff and publishes the
// violation. The flag write is the authoritative effect.
func (s *quizService) lockStudent(ctx context.Context, profile *models.StudentProfile, surface string, event quiz.FocusEvent, midQuiz bool) error {
	profile.QuizLocked = true
	if err := s.repo.Users().UpdateStudent(ctx, profile); err != nil {
		return fmt.Errorf("failed to lock student: %w", err)
	}

	s.logger.Warn("Student locked for focus violation",
		"student_id", profile.UserID,
		"surface", surface,
		"trigger", event,
		"mid_quiz", midQuiz)

	if err := s.publisher.Publish(ctx, events.NewEvent(events.EventQuizViolation, events.QuizViolationEvent{
		StudentID:  profile.UserID,
		Surface:    surface,
		Trigger:    string(event),
		MidQuiz:    midQuiz,
		OccurredAt: s.now(),
	})); err != nil {
		s.logger.Error("Failed to publish violation event", "error", err)
	}

	staffRole := models.RoleStaff
	n := &models.Notification{
		Type:          models.NotificationQuizViolation,
		Title:         "Quiz violation",
		Message:       fmt.Sprintf("Student %s was locked (%s on %s surface).", profile.UserID, event, surface),
		RecipientRole: &staffRole,
		StudentID:     &profile.UserID,
		Priority:      models.PriorityCritical,
	}
	if err := s.repo.Notifications().Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist violation notification", "error", err)
	}
	return nil
}
