package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/response"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports failing fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// NewErrorHandler renders errors that escape handlers and middleware.
// Requests under one of flatPrefixes get the flat {error, code} body.
func NewErrorHandler(log logger.Logger, flatPrefixes ...string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		render := response.Error
		for _, prefix := range flatPrefixes {
			if strings.HasPrefix(c.Request().URL.Path, prefix) {
				render = response.FlatError
				break
			}
		}

		if renderErr := render(c, err); renderErr != nil {
			log.Error("failed to write error response", "path", c.Request().URL.Path, "error", renderErr)
		}
	}
}
