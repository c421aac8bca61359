package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Key material and the bank prefix
// are loaded once at startup and never mutated afterwards.
type Config struct {
	Port     string
	DBConn   string
	LogLevel string

	JWTSecret        string
	JWTExpirationMin int

	// AES key (16/24/32 bytes) and IV (16 bytes) for the card number codec.
	EncryptionKey string
	EncryptionIV  string

	// BankPrefix is the fixed bank identifier prefix of generated card numbers.
	BankPrefix string

	CBRURL string

	// Cron spec of the card expiry sweep.
	ExpirySweepSpec string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables, with an optional
// .env file for local development.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=bank sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		JWTExpirationMin: getEnvInt("JWT_EXPIRATION_MIN", 60),
		EncryptionKey:    getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		EncryptionIV:     getEnv("ENCRYPTION_IV", "a1b2c3d4e5f6a7b8"),
		BankPrefix:       getEnv("BANK_PREFIX", "400000"),
		CBRURL:           getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		ExpirySweepSpec:  getEnv("EXPIRY_SWEEP_SPEC", "0 3 * * *"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "1025"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@bank-rest.local"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch len(cfg.EncryptionKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 16, 24, or 32 bytes, got %d", len(cfg.EncryptionKey))
	}
	if len(cfg.EncryptionIV) != 16 {
		return nil, fmt.Errorf("ENCRYPTION_IV must be 16 bytes, got %d", len(cfg.EncryptionIV))
	}
	if cfg.BankPrefix == "" {
		return nil, fmt.Errorf("BANK_PREFIX is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultVal
}
