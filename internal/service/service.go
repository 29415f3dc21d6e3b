// Package service holds the operations behind the HTTP handlers.
//
// Handlers call it with requests that already passed validation; it
// persists through the repositories and schedules background work.
package service
