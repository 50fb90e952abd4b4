package config

import (
	"os"
	"strconv"
	"time"

	"dropcars/internal/utils"
)

type Config struct {
	App      *AppConfig
	Database *DatabaseConfig
	Redis    *RedisConfig
	Security *SecurityConfig
	Storage  *StorageConfig
	Payment  *PaymentConfig
	SMS      *SMSConfig
	Wallet   *WalletConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        int
	Host        string
	Debug       bool
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	URI            string
	Database       string
	MaxPoolSize    int
	MinPoolSize    int
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type SecurityConfig struct {
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	CredentialTTL     time.Duration
}

type StorageConfig struct {
	Region  string
	Bucket  string
	Enabled bool
}

type PaymentConfig struct {
	RazorpayKeyID     string
	RazorpayKeySecret string
	Enabled           bool
}

type SMSConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	Enabled          bool
}

type WalletConfig struct {
	// Fixed commission debited from the owner wallet per completed trip.
	CommissionAmount float64
	// When true, debits that would take the balance negative are rejected.
	PreventOverdraft bool
	// Window an accepted order stays resourceable before it lapses.
	AcceptTTL time.Duration
}

func Load() (*Config, error) {
	config := &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Security: loadSecurityConfig(),
		Storage:  loadStorageConfig(),
		Payment:  loadPaymentConfig(),
		SMS:      loadSMSConfig(),
		Wallet:   loadWalletConfig(),
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", utils.AppName),
		Version:     getEnv("APP_VERSION", utils.AppVersion),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "0.0.0.0"),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGODB_DATABASE", "dropcars"),
		MaxPoolSize:    getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:    getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
		ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:  getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
	}
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		Enabled:  getEnvAsBool("REDIS_ENABLED", true),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		JWTAccessTokenTTL: getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", utils.JWTAccessTokenTTL),
		CredentialTTL:     getEnvAsDuration("CREDENTIAL_TTL", utils.CredentialTTL),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Region:  getEnv("AWS_REGION", "ap-south-1"),
		Bucket:  getEnv("S3_EVIDENCE_BUCKET", "dropcars-evidence"),
		Enabled: getEnvAsBool("S3_ENABLED", false),
	}
}

func loadPaymentConfig() *PaymentConfig {
	keyID := getEnv("RAZORPAY_KEY_ID", "")
	return &PaymentConfig{
		RazorpayKeyID:     keyID,
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		Enabled:           keyID != "",
	}
}

func loadSMSConfig() *SMSConfig {
	sid := getEnv("TWILIO_ACCOUNT_SID", "")
	return &SMSConfig{
		TwilioAccountSID: sid,
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		Enabled:          sid != "",
	}
}

func loadWalletConfig() *WalletConfig {
	return &WalletConfig{
		CommissionAmount: getEnvAsFloat64("PLATFORM_COMMISSION", utils.PlatformCommission),
		PreventOverdraft: getEnvAsBool("WALLET_PREVENT_OVERDRAFT", false),
		AcceptTTL:        getEnvAsDuration("ASSIGNMENT_ACCEPT_TTL", utils.AssignmentAcceptTTL),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}
