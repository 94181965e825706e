package domain

import (
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  alice ", "pw1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Expected username %q, got %q", "alice", user.Username)
	}

	if user.Password != "pw1" {
		t.Errorf("Expected plaintext password to be kept until hashing, got %q", user.Password)
	}

	if user.ID != 0 {
		t.Errorf("Expected ID to be assigned by the store, got %d", user.ID)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	_, err = NewUser("", "pw1")
	if err != ErrEmptyUsername {
		t.Errorf("Expected error %v, got %v", ErrEmptyUsername, err)
	}

	_, err = NewUser("alice", "")
	if err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	_, err = NewUser("alice", strings.Repeat("x", MaxPasswordLength+1))
	if err != ErrPasswordTooLong {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	stored := User{ID: 1, Username: "bob", HashedPassword: "$2a$10$hash"}
	if err := stored.Validate(); err != nil {
		t.Errorf("Expected stored user with hash to be valid, got %v", err)
	}

	stored.HashedPassword = ""
	if err := stored.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		want     error
	}{
		{"valid", "alice_01", nil},
		{"valid with hyphen", "a-b", nil},
		{"empty", "", ErrEmptyUsername},
		{"too short", "ab", ErrUsernameTooShort},
		{"too long", "a" + strings.Repeat("b", MaxUsernameLength), ErrUsernameTooLong},
		{"starts with digit", "1alice", ErrInvalidUsername},
		{"contains space", "al ice", ErrInvalidUsername},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateUsername(tt.username); got != tt.want {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}
