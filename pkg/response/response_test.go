package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/errors"
)

func render(t *testing.T, fn func(echo.Context) error) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, fn(c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorEnvelope(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Error(c, apperrors.LevelTooLow(3, 1))
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	info := body["error"].(map[string]interface{})
	assert.Equal(t, apperrors.CodeLevelTooLow, info["code"])
	assert.Equal(t, float64(3), info["details"].(map[string]interface{})["required"])
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return Error(c, errors.New("pq: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	info := body["error"].(map[string]interface{})
	assert.Equal(t, apperrors.CodeInternal, info["code"])
	assert.NotContains(t, info["message"], "connection refused")
}

func TestFlatErrorLiftsDetails(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return FlatError(c, apperrors.InsufficientXP(50, 20))
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeInsufficientXP, body["code"])
	assert.Equal(t, "need 30 more XP", body["error"])
	assert.Equal(t, float64(50), body["required"])
	assert.Equal(t, float64(20), body["current"])
}

func TestFlatErrorKeepsHTTPErrorMessage(t *testing.T) {
	status, body := render(t, func(c echo.Context) error {
		return FlatError(c, echo.NewHTTPError(http.StatusUnauthorized, "Invalid session"))
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthenticated, body["code"])
	assert.Equal(t, "Invalid session", body["error"])
}

func TestPaginated(t *testing.T) {
	_, body := render(t, func(c echo.Context) error {
		return Paginated(c, []int{1, 2}, 5, 1, 2)
	})
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["totalPages"])
	assert.Equal(t, float64(5), data["total"])
}
