package apierr

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }
func ErrUnauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}

// Is reports whether err is an *APIError carrying code.
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// ===== response body =====

type ErrorBody struct {
	Error *APIError `json:"error"`
}

func Body(err error) ErrorBody {
	var api *APIError
	if errors.As(err, &api) {
		return ErrorBody{Error: api}
	}
	return ErrorBody{Error: ErrInternal(err.Error())}
}

// Respond writes err with its mapped status.
func Respond(c *gin.Context, err error) {
	c.JSON(ToHTTPStatus(err), Body(err))
}

// ===== validation =====

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json field names instead of Go field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks `validate` struct tags and turns failures into INVALID_ARGUMENT.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalid(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return ErrInvalid(fe.Field() + " is required")
	case "min":
		if fe.Kind() == reflect.String {
			return ErrInvalid(fe.Field() + " must not be empty")
		}
		return ErrInvalid(fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
	case "gt":
		return ErrInvalid(fmt.Sprintf("%s must be > %s", fe.Field(), fe.Param()))
	case "gte":
		return ErrInvalid(fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
	case "lte":
		return ErrInvalid(fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param()))
	case "datetime":
		return ErrInvalid(fmt.Sprintf("%s must match %s", fe.Field(), fe.Param()))
	default:
		return ErrInvalid(fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
}

// Internal passes *APIError through untouched and hides anything else
// behind an INTERNAL error with msg, logging the cause.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	log.Printf("[ERROR] %s: %v", msg, err)
	return ErrInternal(msg)
}
