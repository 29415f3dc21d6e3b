package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"

	// MaxRequestIDLength caps IDs accepted from clients. Longer ones are replaced.
	MaxRequestIDLength = 128
)

type requestIDCtxKey struct{}

// RequestID reuses a sane incoming X-Request-ID or generates a UUID, and
// exposes it to echo handlers, to context.Context consumers and in the
// response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.NewString()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			ctx := context.WithValue(c.Request().Context(), requestIDCtxKey{}, requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetRequestID returns the request ID, or "" when RequestID did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// RequestIDFromContext is GetRequestID for code that only sees a context.Context.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDCtxKey{}).(string)
	return requestID
}

// validRequestID accepts non-empty printable ASCII up to MaxRequestIDLength.
func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
