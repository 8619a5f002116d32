package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process level configuration.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	OTLPEndpoint    string        `env:"OTEL_ENDPOINT"`

	Backend      BackendConfig      `envPrefix:"BACKEND_"`
	Registration RegistrationConfig `envPrefix:"REGISTRATION_"`
	Throttle     ThrottleConfig     `envPrefix:"OTP_THROTTLE_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	Audit        AuditConfig        `envPrefix:"AUDIT_"`
}

// BackendConfig points at the registration backend.
type BackendConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:9000"`
	Channel string        `env:"CHANNEL" envDefault:"userchannels/userchannel1"`
	OTPPath string        `env:"OTP_PATH" envDefault:"/shop/AnonymAuthTransaction/RequestOTPForTransaction"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// Consecutive failures that open the breaker, and successes in degraded
	// mode that close it again.
	BreakerFailures  int `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerSuccesses int `env:"BREAKER_SUCCESSES" envDefault:"2"`
}

type RegistrationConfig struct {
	Campaign         string        `env:"CAMPAIGN"`
	RedirectDelay    time.Duration `env:"REDIRECT_DELAY" envDefault:"2s"`
	CountdownSeconds int           `env:"COUNTDOWN_SECONDS" envDefault:"60"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1m"`
}

// ThrottleConfig bounds OTP requests per user. A zero limit disables it.
type ThrottleConfig struct {
	Limit  int           `env:"LIMIT" envDefault:"5"`
	Window time.Duration `env:"WINDOW" envDefault:"15m"`
}

// AuditConfig bounds the in-process audit trail.
type AuditConfig struct {
	Retention           time.Duration `env:"RETENTION" envDefault:"24h"`
	MaxEventsPerSession int           `env:"MAX_EVENTS_PER_SESSION" envDefault:"256"`
}

// RedisConfig enables the shared throttle when URL is set.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv parses ENROLL_* environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ENROLL_"}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	if c.Registration.CountdownSeconds <= 0 {
		return fmt.Errorf("countdown seconds must be positive, got %d", c.Registration.CountdownSeconds)
	}
	if c.Registration.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Registration.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", c.Registration.CleanupInterval)
	}
	if c.Throttle.Limit < 0 {
		return fmt.Errorf("otp throttle limit must not be negative")
	}
	if c.Throttle.Limit > 0 && c.Throttle.Window <= 0 {
		return fmt.Errorf("otp throttle window must be positive when a limit is set")
	}
	if c.Audit.Retention <= 0 {
		return fmt.Errorf("audit retention must be positive")
	}
	if c.Audit.MaxEventsPerSession <= 0 {
		return fmt.Errorf("audit max events per session must be positive")
	}
	return nil
}
