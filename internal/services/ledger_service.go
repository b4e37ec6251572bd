package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/nexlearn/campus-rewards/internal/events"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/repositories"
	"github.com/nexlearn/campus-rewards/internal/utils"
)

// LedgerService owns every mutation of a student's point balance. Each
// balance change commits in one transaction with its PointHistory entry so
// the balance always equals the sum of history deltas.
type LedgerService interface {
	// AwardFromGrading approves a pending submission, converts the score to
	// points and credits the student. Terminal; a graded submission is
	// rejected on re-grade.
	AwardFromGrading(ctx context.Context, submissionID uint, score int, graderID string) (*models.TaskSubmission, error)
	// RejectSubmission marks a pending submission rejected with no balance
	// change. Terminal.
	RejectSubmission(ctx context.Context, submissionID uint, graderID string) (*models.TaskSubmission, error)

	// AwardFromQuiz credits a completed verification quiz and flags the
	// student verified. A verified student cannot re-enter.
	AwardFromQuiz(ctx context.Context, studentID string, totalPoints int) (*models.StudentProfile, error)

	// AdjustManual applies a signed staff adjustment.
	AdjustManual(ctx context.Context, studentID string, delta int, reason, actorID string) (*models.StudentProfile, error)

	// Redeem exchanges points for a voucher, producing a pending redemption
	// with a claim code. Atomic: balance, history and redemption commit
	// together.
	Redeem(ctx context.Context, studentID string, voucherLevelID uint) (*models.Redemption, error)

	// ProcessRedemption moves a pending redemption to Used or Rejected.
	// Used is refused once the claim window has lapsed.
	ProcessRedemption(ctx context.Context, redemptionID uint, newStatus models.RedemptionStatus, staffID string) (*models.Redemption, error)

	GetBalance(ctx context.Context, studentID string) (int, error)
	GetHistory(ctx context.Context, filters repositories.HistoryFilters) ([]*models.PointHistory, int64, error)
	ListRedemptions(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.Redemption, int64, error)
	// GetRedemptionByCode finds a redemption by its claim code, for staff
	// looking up a voucher presented at the counter.
	GetRedemptionByCode(ctx context.Context, code string) (*models.Redemption, error)

	// VerifyBalance reconciles a student's balance against the history sum.
	VerifyBalance(ctx context.Context, studentID string) (bool, error)
}

type ledgerService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.Publisher
	cache     RankingInvalidator

	now func() time.Time
}

// RankingInvalidator lets the ledger drop stale ranking snapshots after a
// balance change without depending on the full ranking service.
type RankingInvalidator interface {
	InvalidateRankings(ctx context.Context)
}

func NewLedgerService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	publisher events.Publisher,
	cache RankingInvalidator,
) LedgerService {
	return &ledgerService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
	}
}

// ===== GRADING =====

func (s *ledgerService) AwardFromGrading(ctx context.Context, submissionID uint, score int, graderID string) (*models.TaskSubmission, error) {
	s.logger.Info("Grading submission",
		"submission_id", submissionID,
		"score", score,
		"grader_id", graderID)

	var graded *models.TaskSubmission
	var awarded, newBalance int

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		submission, err := tx.Submissions().GetByID(ctx, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}
		if submission.Status.Graded() {
			return ErrSubmissionAlreadyGraded
		}

		task := submission.Task
		if score < 0 || score > task.MaxScore {
			return ErrInvalidScore
		}

		awarded = scoreToPoints(score, task.MaxScore, task.Points)

		profile, err := tx.Users().GetStudentForUpdate(ctx, submission.StudentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotAStudent
			}
			return fmt.Errorf("failed to lock student profile: %w", err)
		}

		now := s.now()
		submission.Status = models.SubmissionApproved
		submission.AwardedScore = &score
		submission.AwardedPoints = awarded
		submission.GradedBy = &graderID
		submission.GradedAt = &now
		if err := tx.Submissions().Update(ctx, submission); err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}

		profile.Points += awarded
		newBalance = profile.Points
		if err := tx.Users().UpdateStudent(ctx, profile); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		if err := tx.History().Append(ctx, &models.PointHistory{
			UserID: submission.StudentID,
			Amount: awarded,
			Reason: fmt.Sprintf("Task graded: %s", task.Title),
			Type:   models.HistoryAwarded,
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		graded = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterLedgerWrite(ctx, events.NewEvent(events.EventSubmissionGraded, events.SubmissionGradedEvent{
		SubmissionID:  graded.ID,
		TaskID:        graded.TaskID,
		StudentID:     graded.StudentID,
		Status:        string(models.SubmissionApproved),
		AwardedPoints: awarded,
		GradedBy:      graderID,
	}))
	// The grading event tracks the submission workflow; the ledger credit
	// goes out separately for balance consumers.
	s.afterLedgerWrite(ctx, events.NewEvent(events.EventPointsAwarded, events.PointsAwardedEvent{
		StudentID: graded.StudentID,
		Amount:    awarded,
		Reason:    fmt.Sprintf("Task graded: %s", graded.Task.Title),
		Balance:   newBalance,
	}))
	s.notifyStudent(ctx, graded.StudentID, models.NotificationSubmissionGraded,
		"Task graded",
		fmt.Sprintf("Your submission was approved and earned %d points.", awarded),
		&graded.ID)

	return graded, nil
}

func (s *ledgerService) RejectSubmission(ctx context.Context, submissionID uint, graderID string) (*models.TaskSubmission, error) {
	s.logger.Info("Rejecting submission", "submission_id", submissionID, "grader_id", graderID)

	var rejected *models.TaskSubmission
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		submission, err := tx.Submissions().GetByID(ctx, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}
		if submission.Status.Graded() {
			return ErrSubmissionAlreadyGraded
		}

		now := s.now()
		submission.Status = models.SubmissionRejected
		submission.GradedBy = &graderID
		submission.GradedAt = &now
		if err := tx.Submissions().Update(ctx, submission); err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		rejected = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStudent(ctx, rejected.StudentID, models.NotificationSubmissionGraded,
		"Task graded",
		"Your submission was reviewed and rejected. No points were awarded.",
		&rejected.ID)

	return rejected, nil
}

// ===== QUIZ CREDIT =====

func (s *ledgerService) AwardFromQuiz(ctx context.Context, studentID string, totalPoints int) (*models.StudentProfile, error) {
	s.logger.Info("Crediting quiz completion", "student_id", studentID, "total_points", totalPoints)

	var updated *models.StudentProfile
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		profile, err := tx.Users().GetStudentForUpdate(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotAStudent
			}
			return fmt.Errorf("failed to lock student profile: %w", err)
		}
		if profile.QuizVerified {
			return ErrQuizAlreadyVerified
		}

		profile.Points += totalPoints
		profile.QuizVerified = true
		profile.QuizAttempts++
		if err := tx.Users().UpdateStudent(ctx, profile); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		if err := tx.History().Append(ctx, &models.PointHistory{
			UserID: studentID,
			Amount: totalPoints,
			Reason: "Verification quiz completed",
			Type:   models.HistoryAwarded,
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterLedgerWrite(ctx, events.NewEvent(events.EventQuizCompleted, events.QuizCompletedEvent{
		StudentID:   studentID,
		TotalPoints: totalPoints,
		Attempts:    updated.QuizAttempts,
	}))
	s.notifyStudent(ctx, studentID, models.NotificationQuizCompleted,
		"Verification complete",
		fmt.Sprintf("You passed the verification quiz and earned %d points.", totalPoints),
		nil)
	return updated, nil
}

// ===== MANUAL ADJUSTMENT =====

// manualAdjustment carries the validated inputs of a staff adjustment.
// required on Delta doubles as the non-zero check.
type manualAdjustment struct {
	Delta  int    `validate:"required"`
	Reason string `validate:"required"`
}

func (s *ledgerService) AdjustManual(ctx context.Context, studentID string, delta int, reason, actorID string) (*models.StudentProfile, error) {
	s.logger.Info("Manual point adjustment",
		"student_id", studentID,
		"delta", delta,
		"actor_id", actorID)

	if err := s.validator.Validate(manualAdjustment{Delta: delta, Reason: reason}); err != nil {
		return nil, err
	}

	var updated *models.StudentProfile
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		profile, err := tx.Users().GetStudentForUpdate(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotAStudent
			}
			return fmt.Errorf("failed to lock student profile: %w", err)
		}
		if profile.Points+delta < 0 {
			return ErrInsufficientBalance
		}

		profile.Points += delta
		if err := tx.Users().UpdateStudent(ctx, profile); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		historyType := models.HistoryAwarded
		if delta < 0 {
			historyType = models.HistoryRedeemed
		}
		if err := tx.History().Append(ctx, &models.PointHistory{
			UserID: studentID,
			Amount: delta,
			Reason: reason,
			Type:   historyType,
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterLedgerWrite(ctx, events.NewEvent(events.EventPointsAdjusted, events.PointsAdjustedEvent{
		StudentID: studentID,
		Delta:     delta,
		Reason:    reason,
		Balance:   updated.Points,
		ActorID:   actorID,
	}))
	s.notifyStudent(ctx, studentID, models.NotificationPointsAdjusted,
		"Points adjusted",
		fmt.Sprintf("Your balance changed by %+d: %s", delta, reason),
		nil)

	return updated, nil
}

// ===== REDEMPTION =====

func (s *ledgerService) Redeem(ctx context.Context, studentID string, voucherLevelID uint) (*models.Redemption, error) {
	s.logger.Info("Redeeming voucher", "student_id", studentID, "voucher_level_id", voucherLevelID)

	var redemption *models.Redemption
	var voucher *models.VoucherLevel

	// The one place that needs genuine atomicity: the profile row lock
	// serializes concurrent redemptions from the same student, and the
	// transaction guarantees balance, history and redemption land together.
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		voucher, err = tx.Vouchers().GetByID(ctx, voucherLevelID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrVoucherNotFound
			}
			return fmt.Errorf("failed to get voucher level: %w", err)
		}

		profile, err := tx.Users().GetStudentForUpdate(ctx, studentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrNotAStudent
			}
			return fmt.Errorf("failed to lock student profile: %w", err)
		}
		if profile.Points < voucher.Cost {
			return ErrInsufficientBalance
		}

		code, err := newRedemptionCode()
		if err != nil {
			return fmt.Errorf("failed to generate redemption code: %w", err)
		}

		profile.Points -= voucher.Cost
		if err := tx.Users().UpdateStudent(ctx, profile); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		if err := tx.History().Append(ctx, &models.PointHistory{
			UserID: studentID,
			Amount: -voucher.Cost,
			Reason: fmt.Sprintf("Redeemed voucher: %s", voucher.Name),
			Type:   models.HistoryRedeemed,
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		redemption = &models.Redemption{
			StudentID:      studentID,
			VoucherLevelID: voucherLevelID,
			Code:           code,
			Status:         models.RedemptionPending,
		}
		if err := tx.Redemptions().Create(ctx, redemption); err != nil {
			return fmt.Errorf("failed to create redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterLedgerWrite(ctx, events.NewEvent(events.EventRedemptionCreated, events.RedemptionCreatedEvent{
		RedemptionID: redemption.ID,
		StudentID:    studentID,
		VoucherName:  voucher.Name,
		Cost:         voucher.Cost,
		Code:         redemption.Code,
	}))
	s.notifyRole(ctx, models.RoleStaff, models.NotificationRedemptionCreated,
		"New redemption request",
		fmt.Sprintf("Code %s awaits fulfilment (%s, %d points).", redemption.Code, voucher.Name, voucher.Cost),
		&redemption.ID)

	return redemption, nil
}

func (s *ledgerService) ProcessRedemption(ctx context.Context, redemptionID uint, newStatus models.RedemptionStatus, staffID string) (*models.Redemption, error) {
	s.logger.Info("Processing redemption",
		"redemption_id", redemptionID,
		"new_status", newStatus,
		"staff_id", staffID)

	if !newStatus.Terminal() {
		return nil, ErrInvalidRedemptionStatus
	}

	var processed *models.Redemption
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		redemption, err := tx.Redemptions().GetByID(ctx, redemptionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRedemptionNotFound
			}
			return fmt.Errorf("failed to get redemption: %w", err)
		}
		if redemption.Status != models.RedemptionPending {
			return ErrRedemptionAlreadyProcessed
		}

		now := s.now()
		// An expired redemption must never be marked Used; refusing beats
		// silently succeeding. Rejection stays possible for cleanup.
		if newStatus == models.RedemptionUsed && redemption.Expired(now) {
			return ErrRedemptionExpired
		}

		redemption.Status = newStatus
		redemption.ProcessedBy = &staffID
		redemption.ProcessedAt = &now
		if err := tx.Redemptions().Update(ctx, redemption); err != nil {
			return fmt.Errorf("failed to update redemption: %w", err)
		}

		processed = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterLedgerWrite(ctx, events.NewEvent(events.EventRedemptionProcessed, events.RedemptionProcessedEvent{
		RedemptionID: processed.ID,
		StudentID:    processed.StudentID,
		Status:       string(newStatus),
		ProcessedBy:  staffID,
	}))
	s.notifyStudent(ctx, processed.StudentID, models.NotificationRedemptionProcessed,
		"Redemption processed",
		fmt.Sprintf("Your redemption %s is now %s.", processed.Code, newStatus),
		&processed.ID)

	return processed, nil
}

// ===== READS =====

func (s *ledgerService) GetBalance(ctx context.Context, studentID string) (int, error) {
	profile, err := s.repo.Users().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrNotAStudent
		}
		return 0, fmt.Errorf("failed to get student profile: %w", err)
	}
	return profile.Points, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, filters repositories.HistoryFilters) ([]*models.PointHistory, int64, error) {
	return s.repo.History().List(ctx, filters)
}

func (s *ledgerService) ListRedemptions(ctx context.Context, filters repositories.RedemptionFilters) ([]*models.Redemption, int64, error) {
	return s.repo.Redemptions().List(ctx, filters)
}

func (s *ledgerService) GetRedemptionByCode(ctx context.Context, code string) (*models.Redemption, error) {
	redemption, err := s.repo.Redemptions().GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("failed to get redemption by code: %w", err)
	}
	return redemption, nil
}

func (s *ledgerService) VerifyBalance(ctx context.Context, studentID string) (bool, error) {
	profile, err := s.repo.Users().GetStudent(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrNotAStudent
		}
		return false, fmt.Errorf("failed to get student profile: %w", err)
	}
	sum, err := s.repo.History().SumByUser(ctx, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to sum history: %w", err)
	}
	return profile.Points == sum, nil
}

// ===== HELPERS =====

// scoreToPoints converts an awarded score into points:
// round(score/maxScore * taskPoints).
func scoreToPoints(score, maxScore, taskPoints int) int {
	return int(math.Round(float64(score) / float64(maxScore) * float64(taskPoints)))
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newRedemptionCode generates a 6-character uppercase alphanumeric claim code.
func newRedemptionCode() (string, error) {
	code := make([]byte, models.RedemptionCodeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}

// afterLedgerWrite publishes the event and drops stale ranking snapshots.
// Both are best-effort; the committed transaction is the source of truth.
func (s *ledgerService) afterLedgerWrite(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish ledger event", "event_type", event.Type, "error", err)
	}
	if s.cache != nil {
		s.cache.InvalidateRankings(ctx)
	}
}

func (s *ledgerService) notifyStudent(ctx context.Context, studentID string, nType models.NotificationType, title, message string, relatedID *uint) {
	n := &models.Notification{
		Type:        nType,
		Title:       title,
		Message:     message,
		RecipientID: &studentID,
		StudentID:   &studentID,
		Priority:    models.PriorityNormal,
	}
	switch nType {
	case models.NotificationRedemptionCreated, models.NotificationRedemptionProcessed:
		n.RedemptionID = relatedID
	case models.NotificationSubmissionGraded:
		n.SubmissionID = relatedID
	case models.NotificationQuizCompleted:
		// Congratulatory only; nothing for the student to act on.
		n.Priority = models.PriorityLow
	}
	if err := s.repo.Notifications().Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist notification", "type", nType, "error", err)
	}
}

func (s *ledgerService) notifyRole(ctx context.Context, role models.UserRole, nType models.NotificationType, title, message string, relatedID *uint) {
	n := &models.Notification{
		Type:          nType,
		Title:         title,
		Message:       message,
		RecipientRole: &role,
		Priority:      models.PriorityHigh,
	}
	if nType == models.NotificationRedemptionCreated {
		n.RedemptionID = relatedID
	}
	if err := s.repo.Notifications().Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist notification", "type", nType, "error", err)
	}
}
