package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Media store (S3 when S3Bucket is set, local disk otherwise)
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string
	MediaDir          string
	MediaBaseURL      string
	MaxUploadMB       int

	// SMTP relay for claim notifications
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPSender   string

	// SendGrid takes precedence over SMTP when an API key is set
	SendGridAPIKey string
	SendGridSender string

	NotifyInterval time.Duration

	// Image classification proxy
	ClassifierURL     string
	ClassifierTimeout time.Duration

	// Rate limiter storage
	RedisHost     string
	RedisPort     int
	RedisPassword string

	// Server
	Port         string
	CORSOrigins  string
	AppEnv       string
	SentryDSN    string
	SupportEmail string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "findmypaw"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		MediaDir:          getEnv("MEDIA_DIR", "./uploads"),
		MediaBaseURL:      getEnv("MEDIA_BASE_URL", "http://localhost:8080/media"),
		MaxUploadMB:       parseInt(getEnv("MAX_UPLOAD_MB", "8"), 8),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPSender:   getEnv("SMTP_SENDER", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SendGridSender: getEnv("SENDGRID_FROM_EMAIL", ""),

		NotifyInterval: parseDuration(getEnv("NOTIFY_INTERVAL", "10s"), 10*time.Second),

		ClassifierURL:     getEnv("CLASSIFIER_URL", "https://yolo-api-cnin.onrender.com/predict"),
		ClassifierTimeout: parseDuration(getEnv("CLASSIFIER_TIMEOUT", "30s"), 30*time.Second),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     parseInt(getEnv("REDIS_PORT", "6379"), 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "dev"),

		SentryDSN:    getEnv("SENTRY_DSN", ""),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@findmypaw.app"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) SendGridEnabled() bool {
	return c.SendGridAPIKey != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
