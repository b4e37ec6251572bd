package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexlearn/campus-rewards/internal/events"
	"github.com/nexlearn/campus-rewards/internal/models"
	"github.com/nexlearn/campus-rewards/internal/quiz"
)

func newTestQuiz(repo *memRepo) (QuizService, *events.MockPublisher) {
	pub := events.NewMockPublisher(testLogger())
	ledger := NewLedgerService(repo, testLogger(), newTestValidator(), pub, nil)
	return NewQuizService(repo, ledger, testLogger(), pub), pub
}

const goodAnswer = "We should recycle paper and install solar panels on campus."

func TestQuizCompletionFlow(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	view, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 1, view.Index)
	assert.Equal(t, 3, view.Total)
	assert.NotEmpty(t, view.Prompt)
	assert.Contains(t, []int{45, 90, 120}, view.TimeLimitSeconds)

	var result *SubmitResult
	for i := 0; i < 3; i++ {
		result, err = svc.SubmitAnswer(ctx, "stu-1", goodAnswer)
		require.NoError(t, err)
	}
	require.True(t, result.Done)
	assert.True(t, result.Verified)
	assert.Positive(t, result.Total)

	// Completion credits the ledger and verifies the student atomically.
	profile, err := repo.Users().GetStudent(ctx, "stu-1")
	require.NoError(t, err)
	assert.True(t, profile.QuizVerified)
	assert.Equal(t, result.Total, profile.Points)
	assert.Equal(t, result.Total, repo.historySum("stu-1"))
	require.Len(t, pub.ByType(events.EventQuizCompleted), 1)

	// Session is gone once completed.
	_, err = svc.SubmitAnswer(ctx, "stu-1", goodAnswer)
	assert.ErrorIs(t, err, ErrNoActiveQuiz)
}

func TestStartQuizRefusals(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("verified", 100, true)
	locked := repo.addStudent("locked", 0, false)
	locked.QuizLocked = true
	svc, _ := newTestQuiz(repo)

	_, err := svc.StartQuiz(context.Background(), "verified")
	assert.ErrorIs(t, err, ErrQuizAlreadyVerified)

	_, err = svc.StartQuiz(context.Background(), "locked")
	assert.ErrorIs(t, err, ErrQuizLocked)

	_, err = svc.StartQuiz(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotAStudent)
}

func TestSubmitAnswerTooShort(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, _ := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)

	// Fourteen characters: refused, session stays on question one.
	_, err = svc.SubmitAnswer(ctx, "stu-1", "fourteen chars")
	assert.True(t, IsValidation(err))

	result, err := svc.SubmitAnswer(ctx, "stu-1", goodAnswer)
	require.NoError(t, err)
	require.NotNil(t, result.Next)
	assert.Equal(t, 2, result.Next.Index)
}

func TestHiddenLocksImmediately(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)

	state, err := svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventHidden)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateLocked, state)

	profile, err := repo.Users().GetStudent(ctx, "stu-1")
	require.NoError(t, err)
	assert.True(t, profile.QuizLocked)
	assert.False(t, profile.QuizVerified)

	// The in-flight session is discarded with no partial credit.
	_, err = svc.SubmitAnswer(ctx, "stu-1", goodAnswer)
	assert.ErrorIs(t, err, ErrNoActiveQuiz)
	assert.Empty(t, repo.history)

	violations := pub.ByType(events.EventQuizViolation)
	require.Len(t, violations, 1)
	payload, ok := violations[0].Data.(events.QuizViolationEvent)
	require.True(t, ok)
	assert.True(t, payload.MidQuiz)
	assert.Equal(t, string(quiz.EventHidden), payload.Trigger)

	// Staff get one critical notification.
	notifs, _, err := repo.Notifications().ListForRecipient(ctx, "staff-9", models.RoleStaff, 10, 0)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationQuizViolation, notifs[0].Type)
}

func TestSecondFocusLossLocks(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, _ := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)

	state, err := svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventFocusLost)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateSuspected, state)

	// Regaining focus clears the suspicion.
	state, err = svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventFocusRegained)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateActive, state)

	// Two losses in a row lock.
	_, err = svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventFocusLost)
	require.NoError(t, err)
	state, err = svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventFocusLost)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateLocked, state)
}

func TestLockIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)
	_, err = svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventHidden)
	require.NoError(t, err)

	// Further events on a locked account publish nothing new.
	for i := 0; i < 5; i++ {
		state, err := svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventHidden)
		require.NoError(t, err)
		assert.Equal(t, quiz.StateLocked, state)
	}
	assert.Len(t, pub.ByType(events.EventQuizViolation), 1)
}

func TestTasksSurfaceLocksWithoutSession(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, true)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	state, err := svc.ReportFocusEvent(ctx, "stu-1", SurfaceTasks, quiz.EventHidden)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateLocked, state)

	profile, _ := repo.Users().GetStudent(ctx, "stu-1")
	assert.True(t, profile.QuizLocked)

	violations := pub.ByType(events.EventQuizViolation)
	require.Len(t, violations, 1)
	payload := violations[0].Data.(events.QuizViolationEvent)
	assert.False(t, payload.MidQuiz)
	assert.Equal(t, SurfaceTasks, payload.Surface)
}

func TestUnlockRestoresAccess(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)
	_, err = svc.ReportFocusEvent(ctx, "stu-1", SurfaceQuiz, quiz.EventHidden)
	require.NoError(t, err)

	profile, err := svc.Unlock(ctx, "stu-1", "tch-1")
	require.NoError(t, err)
	assert.False(t, profile.QuizLocked)
	require.Len(t, pub.ByType(events.EventQuizUnlocked), 1)

	// A fresh attempt is possible after the unlock.
	view, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Index)
}

func TestUnlockRequiresLockedStudent(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, _ := newTestQuiz(repo)

	_, err := svc.Unlock(context.Background(), "stu-1", "tch-1")
	assert.ErrorIs(t, err, ErrQuizNotLocked)
}

func TestAbandonQuizDiscardsProgress(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, pub := newTestQuiz(repo)
	ctx := context.Background()

	_, err := svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, "stu-1", goodAnswer)
	require.NoError(t, err)

	require.NoError(t, svc.AbandonQuiz(ctx, "stu-1"))

	// No credit, no verification, nothing published.
	profile, _ := repo.Users().GetStudent(ctx, "stu-1")
	assert.False(t, profile.QuizVerified)
	assert.Equal(t, 0, profile.Points)
	assert.Empty(t, pub.ByType(events.EventQuizCompleted))

	assert.ErrorIs(t, svc.AbandonQuiz(ctx, "stu-1"), ErrNoActiveQuiz)
}

func TestGetStatus(t *testing.T) {
	repo := newMemRepo()
	repo.addStudent("stu-1", 0, false)
	svc, _ := newTestQuiz(repo)
	ctx := context.Background()

	status, err := svc.GetStatus(ctx, "stu-1")
	require.NoError(t, err)
	assert.False(t, status.InSession)

	_, err = svc.StartQuiz(ctx, "stu-1")
	require.NoError(t, err)

	status, err = svc.GetStatus(ctx, "stu-1")
	require.NoError(t, err)
	assert.True(t, status.InSession)
	require.NotNil(t, status.Current)
	assert.Equal(t, 1, status.Current.Index)
}
