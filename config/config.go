package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"PROFILE_APP_NAME" envDefault:"profile-service"`
	AppEnv       string `env:"PROFILE_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"PROFILE_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"PROFILE_HTTP_PORT" envDefault:"8000"`
	HTTPBasePath string `env:"PROFILE_HTTP_BASE_PATH" envDefault:"/api/v1"`

	DBHost     string `env:"PROFILE_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"PROFILE_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"PROFILE_DB_USER" envDefault:"app"`
	DBPassword string `env:"PROFILE_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"PROFILE_DB_NAME" envDefault:"profiledb"`
	DBSSLMode  string `env:"PROFILE_DB_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"PROFILE_JWT_SECRET"`
	JWTPrivateKey string        `env:"PROFILE_JWT_PRIVATE_KEY"`
	JWTPublicKey  string        `env:"PROFILE_JWT_PUBLIC_KEY"`
	JWTAudience   string        `env:"PROFILE_JWT_AUDIENCE" envDefault:"webapp"`
	JWTIssuer     string        `env:"PROFILE_JWT_ISSUER" envDefault:"profile-service"`
	AccessTTL     time.Duration `env:"PROFILE_JWT_ACCESS_TTL" envDefault:"24h"`

	NATSURL                string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSVerifySubject      string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`
	NATSUserSubject        string `env:"NATS_SUBJECT_USER_REGISTERED" envDefault:"user.registered"`
	NATSTransactionSubject string `env:"NATS_SUBJECT_TRANSACTION_RECORDED" envDefault:"transaction.recorded"`

	MailerBaseURL string        `env:"MAILER_BASE_URL"`
	MailerTimeout time.Duration `env:"MAILER_TIMEOUT" envDefault:"5s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
