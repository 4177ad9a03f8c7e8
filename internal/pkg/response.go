package pkg

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/parkdash/internal/domain"
)

// Response is the standard JSON envelope for machine-facing endpoints.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// FormErrorKey holds a form-level message that belongs to no single field.
const FormErrorKey = "_form"

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := "internal error"
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		msg = appErr.Message
	}

	if fields := domain.FieldErrors(err); len(fields) > 0 {
		c.JSON(status, ValidationErrorResponse{Code: status, Message: msg, Errors: fields})
		return
	}
	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// BindForm binds the request into obj and validates it. On failure it
// returns the messages to show next to each form field and false.
// Values that cannot even be parsed (a year of "abc") are reported under
// FormErrorKey.
func BindForm(c *gin.Context, obj any) (map[string]string, bool) {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil, true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return domain.FieldMessages(ve), false
	}
	return map[string]string{FormErrorKey: "Please check the highlighted fields and try again."}, false
}

// FormErrors returns the field messages carried by err, falling back to a
// form-level message.
func FormErrors(err error, fallback string) map[string]string {
	if fields := domain.FieldErrors(err); len(fields) > 0 {
		out := make(map[string]string, len(fields)+1)
		for k, v := range fields {
			out[k] = v
		}
		if domain.IsServerRejected(err) {
			out[FormErrorKey] = domain.UserMessage(err, fallback)
		}
		return out
	}
	return map[string]string{FormErrorKey: domain.UserMessage(err, fallback)}
}

// InstallValidator makes gin's form binding use the domain validator, so
// binding tags, custom rules and field names are the same everywhere.
func InstallValidator() {
	binding.Validator = &structValidator{v: domain.Validator()}
}

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	val := reflect.ValueOf(obj)
	switch val.Kind() {
	case reflect.Ptr:
		if val.IsNil() {
			return nil
		}
		return s.ValidateStruct(val.Elem().Interface())
	case reflect.Struct:
		return s.v.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			if err := s.ValidateStruct(val.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *structValidator) Engine() any {
	return s.v
}
