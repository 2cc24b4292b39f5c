package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the journal database configuration for integration tests
// If .env file doesn't exist or environment variables are not set, returns a Config with empty values
// which allows tests to skip the database-backed cases
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		return cfg, nil
	}

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "3306"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
	}
	if cfg.Database.User == "" || cfg.Database.DBName == "" {
		// Incomplete settings behave like no database at all
		return &Config{}, nil
	}

	return cfg, nil
}
