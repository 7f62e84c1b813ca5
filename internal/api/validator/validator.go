package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Xebarter/Clevers-Website-sub000/internal/constants"
	"github.com/Xebarter/Clevers-Website-sub000/internal/metrics"
	"github.com/Xebarter/Clevers-Website-sub000/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const (
	sep = " and "
)

type Error struct {
	Error       bool
	FailedField string
	Tag         string
	Value       interface{}
}

type IXValidator interface {
	// Validator parses the request body into data and validates it. The
	// returned error is a VALIDATION_FAILED service error.
	Validator(data any, message string, c *fiber.Ctx) error
	Validate(data interface{}) []Error
}

type XValidator struct {
	validator *validator.Validate
	metrics   *metrics.Metrics
}

func NewXValidator(validate *validator.Validate, metrics *metrics.Metrics) IXValidator {
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	for key, function := range valid {
		_ = validate.RegisterValidation(key, function)
	}

	return &XValidator{
		validator: validate,
		metrics:   metrics,
	}
}

func (x XValidator) Validator(data any, message string, c *fiber.Ctx) error {
	start := time.Now()

	if err := c.BodyParser(data); err != nil {
		x.metrics.RecordValidationError("body", "parse")
		x.metrics.RecordValidationDuration("validation_error", time.Since(start))
		return service.NewServiceError(constants.ErrCodeValidationFailed, fmt.Errorf("invalid request body: %w", err))
	}

	if errs := x.Validate(data); len(errs) > 0 && errs[0].Error {
		errMsgs := make([]string, 0, len(errs))
		for _, err := range errs {
			errMsgs = append(errMsgs, fmt.Sprintf(message, err.FailedField))
			x.metrics.RecordValidationError(err.FailedField, err.Tag)
		}

		x.metrics.RecordValidationDuration("validation_error", time.Since(start))
		return service.NewServiceError(constants.ErrCodeValidationFailed, errors.New(strings.Join(errMsgs, sep)))
	}

	x.metrics.RecordValidationDuration("validation_success", time.Since(start))
	return nil
}

func (x XValidator) Validate(data interface{}) []Error {
	var validationErrors []Error

	errs := x.validator.Struct(data)
	if errs == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(errs, &fieldErrs) {
		return []Error{{Error: true, FailedField: "body", Tag: "struct"}}
	}

	for _, err := range fieldErrs {
		validationErrors = append(validationErrors, Error{
			Error:       true,
			FailedField: err.Field(),
			Tag:         err.Tag(),
			Value:       err.Value(),
		})
	}
	return validationErrors
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}
