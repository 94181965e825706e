package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	id := NewTraceID()
	assert.Len(t, id, TraceIDLength)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewTraceID())

	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestUserIDFromContext(t *testing.T) {
	id, ok := UserIDFromContext(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), 0))
	assert.False(t, ok)

	// A value under the same key but of another type is ignored.
	_, ok = UserIDFromContext(context.WithValue(context.Background(), UserIDContextKey, "42"))
	assert.False(t, ok)
}

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"title":"milk"}`, want: "milk"},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"title":`, wantErr: true},
		{name: "wrong type", body: `{"title":5}`, wantErr: true},
		{name: "trailing value", body: `{"title":"a"}{"title":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got sample
			err := DecodeJSON(req, &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sample{Title: "milk"}))

	err := ValidateRequest(&sample{Title: "too long"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'title'", "errors name the json field")

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithJSON(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, rr.Body.String())

	rr = httptest.NewRecorder()
	RespondNoContent(rr)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusNotFound, wantLevel: "DEBUG"},
		{
			name:      "elevated client error",
			status:    http.StatusUnauthorized,
			opts:      []ResponseOption{WithElevatedLogLevel()},
			wantLevel: "WARN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

			req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
			ctx := logger.WithLogger(WithTraceID(req.Context(), "trace-1"), log)
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			cause := errors.New("pq: password=hunter2 connection failed")
			RespondWithErrorAndLog(rr, req, tt.status, "Something failed", cause, tt.opts...)

			assert.Equal(t, tt.status, rr.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, ErrorResponse{Message: "Something failed", TraceID: "trace-1"}, body)
			assert.NotContains(t, rr.Body.String(), "hunter2")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "trace-1", entry["trace_id"])
			assert.NotContains(t, logs.String(), "hunter2")
		})
	}
}

func TestErrorResponse_AlwaysHasTraceID(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondWithErrorAndLog(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, "Task not found", nil)
	assert.JSONEq(t, `{"message":"Task not found","trace_id":""}`, rr.Body.String())
}
