package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/nexlearn/campus-rewards/internal/errors"
	"github.com/nexlearn/campus-rewards/internal/models"
)

// Validator wraps go-playground struct validation with the service's custom
// rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{validate: v}
}

// Validate runs struct-tag validation, converting failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("redemption_status", validateRedemptionDecision)
	validate.RegisterValidation("attachment_size", validateAttachmentSize)

	// Report field names from json tags for readable error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStudent, models.RoleTeacher, models.RoleStaff, models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return false
}

// validateRedemptionDecision accepts only the terminal states staff may set.
// Pending is the initial state and never a valid target.
func validateRedemptionDecision(fl validator.FieldLevel) bool {
	switch models.RedemptionStatus(fl.Field().String()) {
	case models.RedemptionUsed, models.RedemptionRejected:
		return true
	}
	return false
}

func validateAttachmentSize(fl validator.FieldLevel) bool {
	data, ok := fl.Field().Interface().([]byte)
	if !ok {
		return true
	}
	return len(data) <= models.MaxAttachmentSize
}
