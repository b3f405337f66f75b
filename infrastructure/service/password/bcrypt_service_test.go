package password

import (
	"testing"
)

func TestBcryptPasswordService(t *testing.T) {
	service := NewBcryptPasswordService(4)

	t.Run("Hash", func(t *testing.T) {
		hash, err := service.Hash("test-password-123")
		if err != nil {
			t.Errorf("Failed to hash password: %v", err)
		}
		if hash == "" {
			t.Error("Hash should not be empty")
		}
	})

	t.Run("HashEmptyPassword", func(t *testing.T) {
		_, err := service.Hash("")
		if err == nil {
			t.Error("Should fail to hash empty password")
		}
	})

	t.Run("Compare", func(t *testing.T) {
		password := "test-password-123"
		hash, err := service.Hash(password)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}

		if err := service.Compare(hash, password); err != nil {
			t.Errorf("Password should match its own hash: %v", err)
		}
	})

	t.Run("CompareWrongPassword", func(t *testing.T) {
		hash, err := service.Hash("test-password-123")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}

		if err := service.Compare(hash, "wrong-password-456"); err == nil {
			t.Error("Wrong password should not match")
		}
	})

	t.Run("CompareEmptyInputs", func(t *testing.T) {
		if err := service.Compare("", "password"); err == nil {
			t.Error("Should fail with empty hash")
		}
		if err := service.Compare("$2a$10$somehash", ""); err == nil {
			t.Error("Should fail with empty password")
		}
	})

	t.Run("ZeroCostFallsBackToDefault", func(t *testing.T) {
		s := NewBcryptPasswordService(0)
		hash, err := s.Hash("password123")
		if err != nil {
			t.Fatalf("Failed to hash with default cost: %v", err)
		}
		if err := s.Compare(hash, "password123"); err != nil {
			t.Errorf("Default-cost hash should verify: %v", err)
		}
	})
}
