package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"servicedesk/apperrors"
	"servicedesk/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	RespondError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondError_ProductionKeepsDetailsHidesStack(t *testing.T) {
	prev := config.AppConfig.Env
	config.AppConfig.Env = "production"
	t.Cleanup(func() { config.AppConfig.Env = prev })

	code, body := respond(t, apperrors.NewValidationError("invalid priority",
		apperrors.ValidationDetail{Field: "priority", Message: "must be one of low, medium, high, urgent"}))
	assert.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, "details")
	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "priority", details[0].(map[string]interface{})["field"])

	code, body = respond(t, apperrors.NewUpstreamError("failed to list service orders", errors.New("deadline exceeded")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body, "stack")
}

func TestRespondError_DevelopmentIncludesStack(t *testing.T) {
	prev := config.AppConfig.Env
	config.AppConfig.Env = "development"
	t.Cleanup(func() { config.AppConfig.Env = prev })

	code, body := respond(t, apperrors.NewUpstreamError("failed to list service orders", errors.New("deadline exceeded")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["stack"], "deadline exceeded")
}
