// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations.
//
// Handlers never build error bodies themselves. They pass errors to
// HandleAPIError, which picks the status with MapErrorToStatusCode and the
// client message with GetSafeErrorMessage.
package api
