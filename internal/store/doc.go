// Package store declares the persistence contracts for users and tasks and
// the error sentinels every implementation reports. Task operations are
// owner-scoped: a task owned by another user is indistinguishable from one
// that does not exist.
package store
