package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

const AppName = "casas-backend"

type Config struct {
	AppPort     string
	Environment string // "local" or "deployed"
	FrontendURL string

	OrganizationName string

	// Database
	DBUrl string

	// Messaging gateways. Empty credentials select the mock
	// implementations instead of failing startup.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	SendGridAPIKey   string
	SendGridFrom     string
	SendGridSandbox  bool

	// Auth
	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey
	TokenExpiry   time.Duration

	CORSAllowedOrigins []string

	// Verification workflow
	VerificationCodeLength int
	VerificationCodeExpiry time.Duration

	// Broadcast knobs
	BroadcastBatchSize     int
	BroadcastBatchInterval time.Duration
	BroadcastMaxRetries    int
	BroadcastRetryBackoff  time.Duration
	BroadcastDeadline      time.Duration

	// Reminder scheduler, cron syntax
	ReminderCronSpec string

	// Startup seeding
	AdminEmail    string
	AdminPassword string
	AdminPhone    string
}

func (c *Config) LocalMode() bool     { return c.Environment == "local" }
func (c *Config) TwilioEnabled() bool { return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" }
func (c *Config) SendGridEnabled() bool { return c.SendGridAPIKey != "" }

func LoadConfig() *Config {
	// Best-effort: a missing .env simply means real env vars are in use.
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:          getEnv("APP_PORT", "4000"),
		Environment:      getEnv("ENVIRONMENT", "local"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		OrganizationName: getEnv("ORGANIZATION_NAME", "FR Family Investments"),

		DBUrl: mustEnv("DATABASE_URL"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:  os.Getenv("TWILIO_PHONE_NUMBER"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:     getEnv("SENDGRID_FROM_EMAIL", "noreply@frfamilyinvestments.com"),
		SendGridSandbox:  getEnvBool("SENDGRID_SANDBOX_MODE", false),

		TokenExpiry: getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),

		VerificationCodeLength: getEnvInt("VERIFICATION_CODE_LENGTH", 6),
		VerificationCodeExpiry: getEnvDuration("VERIFICATION_CODE_EXPIRY", 10*time.Minute),

		BroadcastBatchSize:     getEnvInt("BROADCAST_BATCH_SIZE", 50),
		BroadcastBatchInterval: getEnvDuration("BROADCAST_BATCH_INTERVAL", time.Second),
		BroadcastMaxRetries:    getEnvInt("BROADCAST_MAX_RETRIES", 3),
		BroadcastRetryBackoff:  getEnvDuration("BROADCAST_RETRY_BACKOFF", 500*time.Millisecond),
		BroadcastDeadline:      getEnvDuration("BROADCAST_DEADLINE", 10*time.Minute),

		ReminderCronSpec: getEnv("REMINDER_CRON", "0 9 * * *"),

		AdminEmail:    os.Getenv("SETUP_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("SETUP_ADMIN_PASSWORD"),
		AdminPhone:    os.Getenv("SETUP_ADMIN_PHONE"),
	}

	cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	if extra := os.Getenv("CORS_EXTRA_ORIGINS"); extra != "" {
		cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, splitCSV(extra)...)
	}

	priv, pub, err := loadRSAKeys()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load JWT RSA keys")
	}
	cfg.RSAPrivateKey = priv
	cfg.RSAPublicKey = pub

	if !cfg.TwilioEnabled() {
		utils.Logger.Warn("Twilio credentials missing; SMS sending runs in mock mode")
	}
	if !cfg.SendGridEnabled() {
		utils.Logger.Warn("SendGrid credentials missing; email sending runs in mock mode")
	}

	return cfg
}

func loadRSAKeys() (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privB64 := mustEnv("JWT_PRIVATE_KEY_BASE64")
	pubB64 := mustEnv("JWT_PUBLIC_KEY_BASE64")

	privPEM, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return nil, nil, err
	}
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return nil, nil, err
	}

	privBlock, _ := pem.Decode(privPEM)
	if privBlock == nil {
		return nil, nil, errors.New("invalid private key PEM")
	}
	priv, err := x509.ParsePKCS1PrivateKey(privBlock.Bytes)
	if err != nil {
		parsed, pkcs8Err := x509.ParsePKCS8PrivateKey(privBlock.Bytes)
		if pkcs8Err != nil {
			return nil, nil, err
		}
		var ok bool
		priv, ok = parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, nil, errors.New("private key is not RSA")
		}
	}

	pubBlock, _ := pem.Decode(pubPEM)
	if pubBlock == nil {
		return nil, nil, errors.New("invalid public key PEM")
	}
	pubParsed, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	if err != nil {
		return nil, nil, err
	}
	pub, ok := pubParsed.(*rsa.PublicKey)
	if !ok {
		return nil, nil, errors.New("public key is not RSA")
	}

	return priv, pub, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		utils.Logger.Warnf("Invalid %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		utils.Logger.Warnf("Invalid %s, using default %t", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		utils.Logger.Warnf("Invalid %s, using default %s", key, fallback)
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
