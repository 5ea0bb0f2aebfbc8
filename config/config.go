package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backend drivers selectable via STORE_DRIVER
const (
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	Port string

	// Research backend
	GoogleAPIKey    string
	PlacesAPIKey    string
	AgentID         string
	GroundingModel  string
	InteractionsURL string
	PollInterval    time.Duration
	MaxPollTime     time.Duration

	// Storage
	StoreDriver   string
	TasksFile     string
	OutputsDir    string
	SQLitePath    string
	RedisAddr     string
	RedisPort     string
	RedisPassword string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		PlacesAPIKey:    os.Getenv("GOOGLE_PLACES_API_KEY"),
		AgentID:         getEnv("AGENT_ID", "deep-research-pro-preview-12-2025"),
		GroundingModel:  getEnv("GROUNDING_MODEL", "gemini-2.5-flash"),
		InteractionsURL: getEnv("INTERACTIONS_URL", "https://generativelanguage.googleapis.com/v1beta"),
		PollInterval:    time.Duration(getEnvAsInt("POLL_INTERVAL_SECONDS", 15)) * time.Second,
		MaxPollTime:     time.Duration(getEnvAsInt("MAX_POLL_SECONDS", 3600)) * time.Second,

		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverFile),
		TasksFile:     getEnv("TASKS_FILE", "tasks.json"),
		OutputsDir:    getEnv("OUTPUTS_DIR", "outputs"),
		SQLitePath:    getEnv("SQLITE_PATH", "tasks.db"),
		RedisAddr:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
