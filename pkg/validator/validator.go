package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type CustomValidator struct {
	validator *validator.Validate
}

// Option registers a tag whose rule lives outside this package.
type Option func(v *validator.Validate)

// WithRule checks string fields tagged with tag against rule.
func WithRule(tag string, rule func(string) bool) Option {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
	}
}

func NewValidator(opts ...Option) *CustomValidator {
	v := validator.New()

	// Registration never fails for these static tags.
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("license", func(fl validator.FieldLevel) bool {
		return IsValidLicense(fl.Field().String())
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return IsValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})

	for _, opt := range opts {
		opt(v)
	}

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email", "emailshape":
				errors[field] = "Please enter a valid email address"
			case "phone10":
				errors[field] = "Phone must be 10 digits"
			case "personname":
				errors[field] = "Name must be at least 2 characters"
			case "license":
				errors[field] = "License must look like LIC-123456"
			case "slot":
				errors[field] = "Please select a time slot"
			case "isodate":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gt":
				errors[field] = field + " must be greater than " + e.Param()
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
