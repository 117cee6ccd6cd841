// Package api is the HTTP adapter of the learning service. It routes
// submissions, review queue and profile requests to the service, validates
// request bodies and maps service errors to status codes and sanitized
// messages.
package api
