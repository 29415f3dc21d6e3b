// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request logging, CORS, tracing, panic recovery and
// exposing the validation services to request handlers.
package middleware
