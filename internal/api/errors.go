package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"voice-console/internal/auth"
	"voice-console/internal/gateway"
	"voice-console/internal/importer"
	"voice-console/internal/optimistic"
	"voice-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError maps an error from any layer to the console's JSON answers.
func (e *Env) respondError(c *gin.Context, err error) {
	var ge *gateway.Error
	switch {
	case gateway.IsTransport(err):
		e.Logger.Warn("backend unreachable", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "connection error", "retry": true})
	case gateway.IsUnauthorized(err), errors.Is(err, session.ErrNoSession), errors.Is(err, optimistic.ErrDisposed):
		e.signOut(c)
	case gateway.IsForbidden(err), errors.Is(err, auth.ErrForbidden), errors.Is(err, auth.ErrUnverified):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this action"})
	case errors.Is(err, gateway.ErrMalformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected response from backend"})
	case errors.Is(err, optimistic.ErrUnknownKey):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, importer.ErrMissingColumns):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ge) && ge.StatusCode < 500:
		c.JSON(ge.StatusCode, gin.H{"error": ge.Message})
	case errors.As(err, &ge):
		e.Logger.Error("backend error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": ge.Message, "retry": true})
	default:
		e.Logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors name fields as the JSON body does.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name == "" {
					return f.Name
				}
				return name
			})
		}
	})
}

// bind decodes the JSON body into req, answering 400 with per-field messages
// when it does not validate.
func bind(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}
