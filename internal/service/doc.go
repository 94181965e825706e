// Package service coordinates the stores on behalf of the HTTP handlers.
//
// TaskService scopes every call to the authenticated owner and validates
// input before it reaches a store. UserService runs user writes inside a
// transaction. Both receive their dependencies through constructors and
// depend only on the interfaces in internal/store.
//
// Store sentinels such as store.ErrTaskNotFound come back unwrapped so the
// API layer can map them; other failures are wrapped in a ServiceError.
package service
