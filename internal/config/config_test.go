package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Run from an empty directory so a developer .env never leaks in
	t.Chdir(t.TempDir())

	setRequired := func(t *testing.T) {
		t.Helper()
		t.Setenv("BACKEND_URL", "http://backend.test/")
		t.Setenv("BACKEND_APP_ID", "app_1")
		t.Setenv("BACKEND_API_KEY", "kid:abcd")
	}

	t.Run("Success", func(t *testing.T) {
		setRequired(t)
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "10, 20")
		t.Setenv("ADMIN_TELEGRAM_ID", "10")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.BackendURL != "http://backend.test" {
			t.Errorf("Expected BackendURL to be 'http://backend.test', got '%s'", cfg.BackendURL)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.DatabasePath != defaultDatabasePath {
			t.Errorf("Expected default DatabasePath, got '%s'", cfg.DatabasePath)
		}
		if cfg.LeaderboardSize != 10 {
			t.Errorf("Expected LeaderboardSize 10, got %d", cfg.LeaderboardSize)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 20 {
			t.Errorf("Expected allowed ids [10 20], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 10 {
			t.Errorf("Expected AdminTelegramID 10, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("MissingBackendURL", func(t *testing.T) {
		setRequired(t)
		os.Unsetenv("BACKEND_URL")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing BACKEND_URL, got nil")
		}
		expectedError := "BACKEND_URL environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingBackendAPIKey", func(t *testing.T) {
		setRequired(t)
		os.Unsetenv("BACKEND_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing BACKEND_API_KEY, got nil")
		}
		expectedError := "BACKEND_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidLeaderboardSize", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LEADERBOARD_SIZE", "zero")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid LEADERBOARD_SIZE, got nil")
		}
	})

	t.Run("InvalidAllowedIDs", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "10,abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_ALLOWED_USER_IDS, got nil")
		}
	})
}
