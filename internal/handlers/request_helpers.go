package handlers

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"foodstore/internal/config"
	"foodstore/internal/orders"
)

const defaultRequestTimeout = 5 * time.Second

func init() {
	// Report validation failures by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return lowerCamel(field.Name)
			}
			return name
		})
	}
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		zctx.From(c.Request.Context()).Error("Panic recovered",
			zap.String("route", route),
			zap.Any("panic", r),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	}
}

// requestContext bounds a handler's database work by REQUEST_TIMEOUT.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := config.AppEnv.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	zctx.From(c.Request.Context()).Info("Returning error",
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("message", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func respondInternal(c *gin.Context, route string, message string, err error) {
	zctx.From(c.Request.Context()).Error(message, zap.String("route", route), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

// writeOrderError maps order service errors onto HTTP statuses. Anything
// unrecognised is a 500 carrying fallback as its message.
func writeOrderError(c *gin.Context, route string, fallback string, err error) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(c, http.StatusBadRequest, route, verr.Message)
	case errors.Is(err, orders.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, orders.ErrNotFound.Error())
	case errors.Is(err, orders.ErrForbidden):
		respondWithError(c, http.StatusForbidden, route, orders.ErrForbidden.Error())
	case errors.Is(err, orders.ErrDuplicateSubmission):
		respondWithError(c, http.StatusConflict, route, orders.ErrDuplicateSubmission.Error())
	default:
		respondInternal(c, route, fallback, err)
	}
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", fieldError.Field()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", fieldError.Field()))
			}
		}
		zctx.From(c.Request.Context()).Info("Validation failed",
			zap.String("route", route),
			zap.Strings("details", details),
		)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": details[0],
			"details": details,
		})
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
