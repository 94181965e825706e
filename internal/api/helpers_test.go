package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-that-is-at-least-32-characters"

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testEnv wires the real handlers, middleware and JWT service to in-memory stores.
type testEnv struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	jwt    auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            testJWTSecret,
		TokenLifetimeMinutes: 60,
		BCryptCost:           4,
	})
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	taskService, err := service.NewTaskService(tasks, discardLogger)
	require.NoError(t, err)

	authHandler := NewAuthHandler(users, jwtService, mocks.MatchingPasswordVerifier(), discardLogger)
	taskHandler := NewTaskHandler(taskService, discardLogger)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, users)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(discardLogger))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/refresh", authHandler.Refresh)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/overdue", taskHandler.ListOverdue)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Post("/{id}/complete", taskHandler.CompleteTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})
		})
	})

	return &testEnv{router: r, users: users, tasks: tasks, jwt: jwtService}
}

// do sends a request through the router. An empty token sends no
// Authorization header.
func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// seedUser stores a user whose password the test verifier accepts and
// returns a token for it.
func (e *testEnv) seedUser(t *testing.T, username, password string) (int64, string) {
	t.Helper()

	user := e.users.AddUser(username, mocks.MockPasswordHashPrefix+password)
	rr := e.do(t, http.MethodPost, "/api/auth/login", "",
		`{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp AuthResponse
	decode(t, rr, &resp)
	return user.ID, resp.Token
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	decode(t, rr, &resp)
	return resp
}
