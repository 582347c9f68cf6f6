package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageSQLite   StorageDriver = "sqlite"
	StorageMemory   StorageDriver = "memory"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.BucketName != ""
}

type Config struct {
	ServerPort   int
	JWTSecretKey string

	Storage     StorageDriver
	DatabaseURL string
	SQLitePath  string
	DBTimeout   time.Duration

	CORSAllowedOrigins []string

	NATSURL           string
	NATSSubjectPrefix string

	R2 R2Config
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists. Postgres wins over SQLite when both are set; with
// neither the documents live in memory.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	timeout := 5 * time.Second
	if raw := getenv("DB_CONNECT_TIMEOUT"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT %q", raw)
		}
	}

	cfg := &Config{
		ServerPort:         port,
		JWTSecretKey:       jwtKey,
		DatabaseURL:        getenv("DATABASE_URL"),
		SQLitePath:         getenv("SQLITE_PATH"),
		DBTimeout:          timeout,
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		NATSURL:            getenv("NATS_URL"),
		NATSSubjectPrefix:  getenv("NATS_SUBJECT_PREFIX"),
		R2: R2Config{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	switch {
	case cfg.DatabaseURL != "":
		cfg.Storage = StoragePostgres
	case cfg.SQLitePath != "":
		cfg.Storage = StorageSQLite
	default:
		cfg.Storage = StorageMemory
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.NATSSubjectPrefix == "" {
		cfg.NATSSubjectPrefix = "tabletennis"
	}
	if cfg.R2.Enabled() && (cfg.R2.AccessKeyID == "" || cfg.R2.SecretAccessKey == "") {
		return nil, fmt.Errorf("R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY are required when R2 archiving is enabled")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
