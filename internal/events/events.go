package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType labels every event published by the service.
type EventType string

const (
	// Ledger events
	EventPointsAwarded  EventType = "ledger.points_awarded"
	EventPointsAdjusted EventType = "ledger.points_adjusted"

	// Quiz events
	EventQuizCompleted EventType = "quiz.completed"
	EventQuizViolation EventType = "quiz.violation"
	EventQuizUnlocked  EventType = "quiz.unlocked"

	// Redemption events
	EventRedemptionCreated   EventType = "redemption.created"
	EventRedemptionProcessed EventType = "redemption.processed"

	// Grading events
	EventSubmissionGraded EventType = "grading.submission_graded"
)

const (
	eventSource  = "campus-rewards"
	eventVersion = "1.0"
)

// Event is the envelope for every message on the notification topic.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps a payload in a fresh envelope.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// ===== EVENT PAYLOADS =====

type PointsAwardedEvent struct {
	StudentID string `json:"student_id"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	Balance   int    `json:"balance"`
}

type PointsAdjustedEvent struct {
	StudentID string `json:"student_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	Balance   int    `json:"balance"`
	ActorID   string `json:"actor_id"`
}

type QuizCompletedEvent struct {
	StudentID   string `json:"student_id"`
	TotalPoints int    `json:"total_points"`
	Attempts    int    `json:"attempts"`
}

type QuizViolationEvent struct {
	StudentID  string    `json:"student_id"`
	Surface    string    `json:"surface"` // "quiz" or "tasks"
	Trigger    string    `json:"trigger"`
	MidQuiz    bool      `json:"mid_quiz"`
	OccurredAt time.Time `json:"occurred_at"`
}

type QuizUnlockedEvent struct {
	StudentID string `json:"student_id"`
	ActorID   string `json:"actor_id"`
}

type RedemptionCreatedEvent struct {
	RedemptionID uint   `json:"redemption_id"`
	StudentID    string `json:"student_id"`
	VoucherName  string `json:"voucher_name"`
	Cost         int    `json:"cost"`
	Code         string `json:"code"`
}

type RedemptionProcessedEvent struct {
	RedemptionID uint   `json:"redemption_id"`
	StudentID    string `json:"student_id"`
	Status       string `json:"status"`
	ProcessedBy  string `json:"processed_by"`
}

type SubmissionGradedEvent struct {
	SubmissionID  uint   `json:"submission_id"`
	TaskID        uint   `json:"task_id"`
	StudentID     string `json:"student_id"`
	Status        string `json:"status"`
	AwardedPoints int    `json:"awarded_points"`
	GradedBy      string `json:"graded_by"`
}
