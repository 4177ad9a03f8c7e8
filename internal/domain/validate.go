package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinVehicleYear is the earliest accepted model year.
const MinVehicleYear = 1900

var (
	validateOnce sync.Once
	validate     *validator.Validate

	// now is replaced in tests to pin the current year.
	now = time.Now
)

// Validator returns the process-wide validator. It reads `binding` tags so the
// same rules apply to gin form binding and to direct calls from the query layer,
// and it reports fields by their form name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		v.RegisterTagNameFunc(formFieldName)

		mustRegister(v, "vehicleyear", func(fl validator.FieldLevel) bool {
			y := int(fl.Field().Int())
			return y >= MinVehicleYear && y <= MaxVehicleYear()
		})
		mustRegister(v, "slotsize", func(fl validator.FieldLevel) bool {
			return oneOf(fl.Field().String(), SlotSizes)
		})
		mustRegister(v, "slotstatus", func(fl validator.FieldLevel) bool {
			return oneOf(fl.Field().String(), SlotStatuses)
		})
		mustRegister(v, "orderstatus", func(fl validator.FieldLevel) bool {
			return oneOf(fl.Field().String(), OrderStatuses)
		})
		validate = v
	})
	return validate
}

// MaxVehicleYear is next year, so pre-announced models can be registered.
func MaxVehicleYear() int {
	return now().Year() + 1
}

// Validate checks in against its binding rules. A failure is returned as a
// CodeValidation *AppError whose Fields map form field names to messages.
func Validate(in any) error {
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return NewAppError(CodeValidation, "validation error", err)
	}
	return NewValidationError(FieldMessages(ve), err)
}

// FieldMessages renders validation errors as human-readable messages keyed
// by form field name. Only the first failure per field is kept.
func FieldMessages(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "eqfield":
		return "does not match"
	case "vehicleyear":
		return fmt.Sprintf("must be between %d and %d", MinVehicleYear, MaxVehicleYear())
	case "slotsize":
		return "must be one of " + joinValues(SlotSizes)
	case "slotstatus":
		return "must be one of " + joinValues(SlotStatuses)
	case "orderstatus":
		return "must be one of " + joinValues(OrderStatuses)
	default:
		return "is invalid"
	}
}

func formFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func oneOf[S ~string](v string, allowed []S) bool {
	for _, a := range allowed {
		if string(a) == v {
			return true
		}
	}
	return false
}

func joinValues[S ~string](vals []S) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
