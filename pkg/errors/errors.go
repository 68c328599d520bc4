package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeInsufficientXP     = "INSUFFICIENT_XP"
	CodeLevelTooLow        = "LEVEL_TOO_LOW"
	CodeExternalMintFailed = "EXTERNAL_MINT_FAILED"
	CodePersistFailed      = "PERSIST_FAILED"
	CodeQuestIncomplete    = "QUEST_INCOMPLETE"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInternal           = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key to the details rendered alongside the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func InsufficientXP(required, current int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientXP,
		Message: fmt.Sprintf("need %d more XP", required-current),
		Status:  http.StatusBadRequest,
		Details: map[string]interface{}{"required": required, "current": current},
	}
}

func LevelTooLow(required, current int) *AppError {
	return &AppError{
		Code:    CodeLevelTooLow,
		Message: fmt.Sprintf("requires level %d", required),
		Status:  http.StatusBadRequest,
		Details: map[string]interface{}{"required": required, "current": current},
	}
}

func ExternalMintFailed(err error) *AppError {
	appErr := &AppError{
		Code:    CodeExternalMintFailed,
		Message: "Failed to create discount code, please try again",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
	if err != nil {
		appErr.Details = map[string]interface{}{"upstream": err.Error()}
	}
	return appErr
}

func PersistFailed(err error) *AppError {
	return &AppError{
		Code:    CodePersistFailed,
		Message: "Reward was issued but could not be recorded, please contact support",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func QuestIncomplete(questID string) *AppError {
	return &AppError{
		Code:    CodeQuestIncomplete,
		Message: fmt.Sprintf("quest %s is not completed yet", questID),
		Status:  http.StatusBadRequest,
	}
}

func TooManyRequests(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
		Details: map[string]interface{}{"retryAfter": retryAfterSeconds},
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
