package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message   string    `json:"message"`
	ErrorData ErrorData `json:"errorData"`
	Location  string    `json:"location"`
}

// ErrorData carries the stable code and, for validation failures, per-field messages.
type ErrorData struct {
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RespondWithError writes an error envelope and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode, message, location string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Message:   message,
		ErrorData: ErrorData{Code: errorCode},
		Location:  location,
	})
}

// RespondWithAppError maps a service error to its status code. Unclassified errors become 500
// and their text is not exposed.
func RespondWithAppError(c *gin.Context, err error, location string) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		RespondWithError(c, appErr.Kind.HTTPStatus(), appErr.Code, appErr.Message, location)
		return
	}
	_ = c.Error(err)
	InternalError(c, "", location)
}

func Unauthorized(c *gin.Context, code, message, location string) {
	if code == "" {
		code = AuthUnauthorized
	}
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, code, message, location)
}

func Forbidden(c *gin.Context, code, message, location string) {
	if code == "" {
		code = AuthzForbidden
	}
	if message == "" {
		message = "You are not allowed to perform this action"
	}
	RespondWithError(c, http.StatusForbidden, code, message, location)
}

func BadRequest(c *gin.Context, code, message, location string) {
	RespondWithError(c, http.StatusBadRequest, code, message, location)
}

func NotFound(c *gin.Context, code, message, location string) {
	RespondWithError(c, http.StatusNotFound, code, message, location)
}

func InternalError(c *gin.Context, message, location string) {
	if message == "" {
		message = "Something went wrong, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message, location)
}

// RespondWithValidationError turns binding errors into a 400 with per-field messages.
func RespondWithValidationError(c *gin.Context, err error, location string) {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = describeFieldError(fe)
		}
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Message:   "Invalid input",
		ErrorData: ErrorData{Code: ValidationInvalidInput, Fields: fields},
		Location:  location,
	})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
