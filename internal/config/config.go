package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`

	HTTP       HTTPConfig
	DB         DBConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWTSecret  string `env:"JWT_SECRET"`
	Attendance AttendancePolicy
	Payroll    PayrollPolicy
}

type HTTPConfig struct {
	Port         string        `env:"PORT" envDefault:"3000"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

type DBConfig struct {
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_NAME" envDefault:"workforce"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxRetries  int    `env:"DB_MAX_RETRIES" envDefault:"5"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
}

type KafkaConfig struct {
	Broker        string        `env:"KAFKA_BROKER"`
	ConsumerGroup string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"go-workforce-payroll"`
	PollInterval  time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`
}

// AttendancePolicy bounds clock-in around the scheduled shift start.
type AttendancePolicy struct {
	EarlyWindow time.Duration `env:"CLOCK_IN_EARLY_WINDOW" envDefault:"15m"`
	LateWindow  time.Duration `env:"CLOCK_IN_LATE_WINDOW" envDefault:"30m"`
	LateGrace   time.Duration `env:"CLOCK_IN_LATE_GRACE" envDefault:"5m"`
	MaxBreak    time.Duration `env:"MAX_BREAK" envDefault:"60m"`
}

type PayrollPolicy struct {
	WeeklyRegularHours   decimal.Decimal `env:"PAYROLL_WEEKLY_REGULAR_HOURS" envDefault:"40"`
	OvertimeMultiplier   decimal.Decimal `env:"PAYROLL_OVERTIME_MULTIPLIER" envDefault:"1.5"`
	LatePenalty          decimal.Decimal `env:"PAYROLL_LATE_PENALTY" envDefault:"25"`
	NoShowPenalty        decimal.Decimal `env:"PAYROLL_NO_SHOW_PENALTY" envDefault:"100"`
	PerformanceBonus     decimal.Decimal `env:"PAYROLL_PERFORMANCE_BONUS" envDefault:"1000"`
	PerformanceThreshold decimal.Decimal `env:"PAYROLL_PERFORMANCE_THRESHOLD" envDefault:"4.5"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location returns the timezone shift times are interpreted in.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
