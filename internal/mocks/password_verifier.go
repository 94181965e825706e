package mocks

import (
	"fmt"
	"sync"

	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier. Without CompareFn
// it accepts every password when ShouldSucceed is set and rejects every
// password otherwise, with the same error the bcrypt verifier gives.
type MockPasswordVerifier struct {
	ShouldSucceed bool
	CompareFn     func(hashedPassword, password string) error

	mu    sync.Mutex
	calls int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return errMismatch()
}

// Calls is the number of Compare calls so far.
func (m *MockPasswordVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MatchingPasswordVerifier accepts a password exactly when the hash was
// produced by MockUserStore for that plaintext.
func MatchingPasswordVerifier() *MockPasswordVerifier {
	return &MockPasswordVerifier{
		CompareFn: func(hashedPassword, password string) error {
			if hashedPassword == MockPasswordHashPrefix+password {
				return nil
			}
			return errMismatch()
		},
	}
}

func errMismatch() error {
	return fmt.Errorf("%w: password mismatch", auth.ErrInvalidCredentials)
}
