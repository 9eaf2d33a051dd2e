// Package response renders the shared JSON envelope and maps the error
// taxonomy onto HTTP statuses.
package response

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/bloppost/core/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// OK sends a 200 response. Arrays/slices are wrapped in {data: [...]}.
func OK(c *gin.Context, data interface{}) {
	if data != nil {
		v := reflect.ValueOf(data)
		if v.Kind() == reflect.Slice {
			c.JSON(http.StatusOK, gin.H{"data": data})
			return
		}
	}
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperr.KindValidation, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, apperr.KindInvalidCredentials, "authentication required")
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, apperr.KindForbidden, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, apperr.KindNotFound, message)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
		"ok": 0, "code": http.StatusMethodNotAllowed, "message": "method not allowed",
	})
}

// InternalError sends a 500 error response without leaking driver details.
func InternalError(c *gin.Context) {
	fail(c, http.StatusInternalServerError, apperr.KindStorage, "storage unavailable")
}

// FromError renders a service error using the taxonomy mapping.
// Unclassified errors are treated as transient storage failures.
func FromError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		InternalError(c)
		return
	}
	fail(c, statusFor(ae.Kind), ae.Kind, ae.Message)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicateKey:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidCredentials:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"ok":      0,
		"code":    status,
		"kind":    kind,
		"message": message,
	})
}
