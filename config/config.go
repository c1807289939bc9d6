package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvProduction = "production"

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	DBURL     string `env:"DB_URL,required,notEmpty"`
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// comma separated, first one signs; older ones still verify
	CSRFSecrets     []string `env:"CSRF_SECRETS,required,notEmpty" envSeparator:","`
	CSRFCookieName  string   `env:"CSRF_COOKIE_NAME" envDefault:"_csrf"`
	CSRFExemptPaths []string `env:"CSRF_EXEMPT_PATHS" envSeparator:"," envDefault:"/api/contributors,/api-docs,/api/webhooks"`
	CookieDomain    string   `env:"COOKIE_DOMAIN"`

	CORSOrigins   []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:5173"`
	WebhookSecret string   `env:"WEBHOOK_SECRET"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}
