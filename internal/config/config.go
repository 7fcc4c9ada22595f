package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultDatabasePath    = "data/meal-insights.db"
	defaultLeaderboardSize = 10
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	LogMode      string

	// Hosted backend that owns plans, logs and goals
	BackendURL    string
	BackendAppID  string
	BackendAPIKey string

	GeminiAPIKey string
	GroqAPIKey   string

	GroceryKeywordsFile string
	LeaderboardSize     int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL environment variable not set")
	}

	backendAppID := os.Getenv("BACKEND_APP_ID")
	if backendAppID == "" {
		return nil, fmt.Errorf("BACKEND_APP_ID environment variable not set")
	}

	backendAPIKey := os.Getenv("BACKEND_API_KEY")
	if backendAPIKey == "" {
		return nil, fmt.Errorf("BACKEND_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = defaultDatabasePath
	}

	leaderboardSize := defaultLeaderboardSize
	if v := os.Getenv("LEADERBOARD_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("LEADERBOARD_SIZE must be a positive integer, got %q", v)
		}
		leaderboardSize = n
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return &Config{
		DatabasePath:           databasePath,
		LogMode:                os.Getenv("LOG_MODE"),
		BackendURL:             strings.TrimRight(backendURL, "/"),
		BackendAppID:           backendAppID,
		BackendAPIKey:          backendAPIKey,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		GroceryKeywordsFile:    os.Getenv("GROCERY_KEYWORDS_FILE"),
		LeaderboardSize:        leaderboardSize,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
