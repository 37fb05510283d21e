package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"servicedesk/apperrors"
	"servicedesk/middleware"
	"servicedesk/models"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// actor returns the authenticated user. It writes a 401 and reports false
// when the auth middleware did not run.
func actor(c *gin.Context) (models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, apperrors.NewAuthError("authentication required"))
	}
	return u, ok
}

// bindJSON decodes the body into dst and turns binding failures into a
// ValidationError carrying one detail per offending field.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apperrors.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperrors.ValidationDetail{
				Field:   lowerFirst(fe.Field()),
				Message: describeRule(fe),
			})
		}
		return apperrors.NewValidationError("invalid request body", details...)
	}
	return apperrors.NewValidationError("invalid request body: " + err.Error())
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be an E.164 phone number"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// queryTime parses an optional RFC 3339 query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+name,
			apperrors.ValidationDetail{Field: name, Message: "must be an RFC 3339 timestamp"})
	}
	t = t.UTC()
	return &t, nil
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}
