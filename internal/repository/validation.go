package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"showroom/internal/models"

	"github.com/go-playground/validator/v10"
)

// BookingValidator checks a BookingRecord before it is written to the sheet.
type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() (*BookingValidator, error) {
	v := validator.New()

	// Report fields by their column name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("booking_status", oneOfValues(models.BookingStatusValues())); err != nil {
		return nil, fmt.Errorf("register booking_status validator: %w", err)
	}
	if err := v.RegisterValidation("amount_status", oneOfValues(models.AmountStatusValues())); err != nil {
		return nil, fmt.Errorf("register amount_status validator: %w", err)
	}

	return &BookingValidator{validate: v}, nil
}

func oneOfValues(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// Validate returns the first failing field as a *models.ValidationError.
// Missing required fields are reported before malformed ones.
func (v *BookingValidator) Validate(record *models.BookingRecord) error {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, fe := range validationErrs {
		if fe.Tag() == "required" {
			return translate(fe)
		}
	}
	return translate(validationErrs[0])
}

func translate(fe validator.FieldError) *models.ValidationError {
	message := fe.Error()

	switch fe.Tag() {
	case "required":
		message = "is required"
	case "datetime":
		message = fmt.Sprintf("must be a date in %s format", models.DateLayout)
	case "numeric":
		message = "must be numeric"
	case "booking_status":
		message = fmt.Sprintf("must be one of %s", strings.Join(models.BookingStatusValues(), ", "))
	case "amount_status":
		message = fmt.Sprintf("must be one of %s", strings.Join(models.AmountStatusValues(), ", "))
	case "oneof":
		message = fmt.Sprintf("must be one of %s", fe.Param())
	}

	return &models.ValidationError{
		Field:   fe.Field(),
		Message: message,
	}
}
