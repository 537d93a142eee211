package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrInvalid = errors.New("validation failed")

type (
	FieldError struct {
		Field   string
		Rule    string
		Message string
	}

	// Errors is reported per field, ordered by field name.
	Errors []FieldError

	Rule struct {
		Tag     string
		Func    validator.Func
		Message string
	}

	Validator struct {
		once     sync.Once
		rules    []Rule
		validate *validator.Validate
		initErr  error
	}
)

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fieldErr := range e {
		parts = append(parts, fieldErr.Field+" "+fieldErr.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalid
}

// Field returns the message for the field or an empty string.
func (e Errors) Field(name string) string {
	for _, fieldErr := range e {
		if fieldErr.Field == name {
			return fieldErr.Message
		}
	}
	return ""
}

func New(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

func (v *Validator) Struct(obj any) error {
	v.lazyinit()
	if v.initErr != nil {
		return v.initErr
	}

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate %T: %w", obj, err)
	}

	result := make(Errors, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		result = append(result, FieldError{
			Field:   fieldErr.Field(),
			Rule:    fieldErr.Tag(),
			Message: v.describe(fieldErr),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Field < result[j].Field
	})

	return result
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.RegisterTagNameFunc(jsonFieldName)

		for _, rule := range v.rules {
			err := v.validate.RegisterValidation(rule.Tag, rule.Func)
			if err != nil {
				v.initErr = fmt.Errorf("register rule %s: %w", rule.Tag, err)
				return
			}
		}
	})
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func (v *Validator) describe(fieldErr validator.FieldError) string {
	for _, rule := range v.rules {
		if rule.Tag == fieldErr.Tag() && rule.Message != "" {
			return rule.Message
		}
	}

	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fieldErr.Param()), ", ")
	case "min", "gte":
		return "must be at least " + fieldErr.Param()
	case "max", "lte":
		return "must be at most " + fieldErr.Param()
	case "len":
		return "must have length " + fieldErr.Param()
	case "numeric":
		return "must contain digits only"
	case "datetime":
		return "must match format " + fieldErr.Param()
	default:
		return "is invalid"
	}
}
