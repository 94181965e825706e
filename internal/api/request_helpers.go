package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// getUserIDFromContext extracts the authenticated user's ID from the request context.
// The user ID is expected to be placed in the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (int64, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathID extracts a positive integer ID from the URL path parameters.
// Anything else cannot name a task, so it is reported as not found.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a task ID", store.ErrTaskNotFound, paramName, pathParam)
	}
	return id, nil
}

// handleUserIDAndPathID is a composite helper that extracts both the user ID from context
// and an ID from the path parameters. It writes an error response if either extraction fails.
func handleUserIDAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (int64, int64, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return userID, pathID, true
}

// parseTaskFilter reads completed, priority, limit and offset query parameters.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, domain.NewValidationError("completed", "must be true or false", domain.ErrInvalidFormat)
		}
		filter.Completed = &completed
	}

	if v := q.Get("priority"); v != "" {
		p, err := domain.ParsePriority(v)
		if err != nil {
			return filter, domain.NewValidationError("priority", "must be one of low, medium, high", err)
		}
		filter.Priority = &p
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	filter.Offset = offset
	return filter, nil
}

// parsePagination reads limit (1..MaxTaskLimit) and offset (>= 0). Absent
// values are returned as zero.
func parsePagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	var limit, offset int

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxTaskLimit {
			return 0, 0, domain.NewValidationError("limit",
				fmt.Sprintf("must be between 1 and %d", store.MaxTaskLimit), domain.ErrInvalidFormat)
		}
		limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, domain.NewValidationError("offset", "must be zero or positive", domain.ErrInvalidFormat)
		}
		offset = n
	}

	return limit, offset, nil
}
