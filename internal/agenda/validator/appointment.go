package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"recolhe/pkg/logger"
	"recolhe/pkg/model"
	"recolhe/pkg/sanitizer"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppointmentValidator checks an appointment before it is committed to the
// ledger. Free-text fields only need to be present; the period must belong
// to the configured set after case folding, since it is stored as typed.
type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(periods []string, log *logger.Logger) *AppointmentValidator {
	allowed := make(map[string]bool, len(periods))
	for _, p := range periods {
		allowed[sanitizer.FoldToken(p)] = true
	}

	v := validator.New()
	err := v.RegisterValidation("collectionperiod", func(fl validator.FieldLevel) bool {
		return allowed[sanitizer.FoldToken(fl.Field().String())]
	})
	if err != nil {
		log.Fatal("Failed to register 'collectionperiod' validator", "error", err)
	}

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AppointmentValidator) Validate(appointment *model.Appointment) error {
	if err := v.validate.Struct(appointment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "collectionperiod":
			message = fmt.Sprintf("%s must be a configured collection period", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
