package response

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Timestamp: now(),
	})
}

func Paginated(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}

	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Timestamp: now(),
		Data: PaginatedResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    "VALIDATION_ERROR",
				Message: validationMessage(validationErr),
			},
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Response{
			Success:   false,
			Timestamp: now(),
			Error: &ErrorInfo{
				Code:    codeForStatus(httpErr.Code),
				Message: httpMessage(httpErr),
			},
		})
	}

	if appErr, ok := apperrors.As(err); ok {
		info := &ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if len(appErr.Details) > 0 {
			info.Details = appErr.Details
		}
		return c.JSON(appErr.Status, Response{
			Success:   false,
			Timestamp: now(),
			Error:     info,
		})
	}

	return c.JSON(http.StatusInternalServerError, Response{
		Success:   false,
		Timestamp: now(),
		Error: &ErrorInfo{
			Code:    apperrors.CodeInternal,
			Message: "An unexpected error occurred",
		},
	})
}

// FlatError renders {error, code, ...details} for endpoints whose clients
// read the failure details at the top level of the body.
func FlatError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	body := map[string]interface{}{
		"error": "An unexpected error occurred",
		"code":  apperrors.CodeInternal,
	}

	var validationErr validator.ValidationErrors
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body["error"] = validationMessage(validationErr)
		body["code"] = apperrors.CodeBadRequest
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body["error"] = httpMessage(httpErr)
		body["code"] = codeForStatus(httpErr.Code)
	default:
		if appErr, ok := apperrors.As(err); ok {
			status = appErr.Status
			body["error"] = appErr.Message
			body["code"] = appErr.Code
			for k, v := range appErr.Details {
				if k == "error" || k == "code" {
					continue
				}
				body[k] = v
			}
		}
	}

	return c.JSON(status, body)
}

func httpMessage(httpErr *echo.HTTPError) string {
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		return msg
	}
	return http.StatusText(httpErr.Code)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthenticated
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return apperrors.CodeBadRequest
	}
	return apperrors.CodeInternal
}

func validationMessage(validationErr validator.ValidationErrors) string {
	for _, err := range validationErr {
		field := strings.ToLower(err.Field()[:1]) + err.Field()[1:]
		switch err.Tag() {
		case "required":
			return field + " is required"
		case "min":
			return field + " must be at least " + err.Param()
		case "max":
			return field + " must be at most " + err.Param()
		case "oneof":
			return field + " must be one of: " + err.Param()
		default:
			return field + " is invalid"
		}
	}
	return "Invalid input data"
}
