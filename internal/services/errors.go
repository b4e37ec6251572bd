package services

import (
	"errors"
	"fmt"

	apperrors "github.com/nexlearn/campus-rewards/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrNotAStudent  = errors.New("user is not a student")
	ErrInvalidRole  = errors.New("invalid user role")

	// Task / submission errors
	ErrTaskNotFound            = errors.New("task not found")
	ErrTaskHasSubmissions      = errors.New("task cannot be modified - has existing submissions")
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrDuplicateSubmission     = errors.New("student already submitted this task")
	ErrSubmissionAlreadyGraded = errors.New("submission already graded")
	ErrInvalidScore            = errors.New("score exceeds the task's maximum")
	ErrAttachmentTooLarge      = errors.New("attachment exceeds the 5 MiB inline limit")
	ErrDeadlinePassed          = errors.New("task deadline has passed")

	// Ledger / redemption errors
	ErrInsufficientBalance        = errors.New("insufficient point balance")
	ErrVoucherNotFound            = errors.New("voucher level not found")
	ErrRedemptionNotFound         = errors.New("redemption not found")
	ErrRedemptionExpired          = errors.New("redemption has expired and cannot be used")
	ErrRedemptionAlreadyProcessed = errors.New("redemption already processed")
	ErrInvalidRedemptionStatus    = errors.New("invalid redemption status transition")

	// Quiz errors
	ErrQuizAlreadyVerified = errors.New("student already completed verification")
	ErrQuizLocked          = errors.New("quiz access is locked - staff intervention required")
	ErrNoActiveQuiz        = errors.New("no quiz session in progress")
	ErrQuizNotLocked       = errors.New("student is not locked")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.Reason)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// IsNotFound checks if err represents a "not found" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrVoucherNotFound) ||
		errors.Is(err, ErrRedemptionNotFound)
}

// IsForbidden checks if err represents an authorization failure.
func IsForbidden(err error) bool {
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrQuizLocked) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if err represents a validation failure.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrAttachmentTooLarge) ||
		errors.Is(err, ErrInvalidScore) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if err represents a business rule violation.
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if err represents a state conflict a client can act on.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateSubmission) ||
		errors.Is(err, ErrSubmissionAlreadyGraded) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrRedemptionExpired) ||
		errors.Is(err, ErrRedemptionAlreadyProcessed) ||
		errors.Is(err, ErrQuizAlreadyVerified) ||
		errors.Is(err, ErrTaskHasSubmissions)
}
