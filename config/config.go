package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	DBURL string `envconfig:"DB_URL"`

	// Session + admin tokens
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	AdminTokenTTL     time.Duration `envconfig:"ADMIN_TOKEN_TTL" default:"8h"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`

	// Business day
	Timezone             string        `envconfig:"TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	BusinessDayCutoff    int           `envconfig:"BUSINESS_DAY_CUTOFF_HOUR" default:"8"`
	EstimateBuffer       time.Duration `envconfig:"ESTIMATE_BUFFER" default:"10m"`
	CounterRetentionDays int           `envconfig:"COUNTER_RETENTION_DAYS" default:"90"`

	// Optional infrastructure; empty disables the component
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	KafkaBrokers   []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string        `envconfig:"KAFKA_TOPIC" default:"booking.created"`
	MongoURI       string        `envconfig:"MONGO_URI"`
	MongoDatabase  string        `envconfig:"MONGO_DATABASE" default:"spa"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_FROM"`
	TwilioWhatsApp   bool   `envconfig:"TWILIO_WHATSAPP" default:"false"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"json"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	Log      *Logger        `ignored:"true"`
	Location *time.Location `ignored:"true"`
}

func Load(serviceName string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.Log = NewLogger(LoggerConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be between 1 and 65535, got: %s", cfg.Port))
	}
	if cfg.DBURL == "" {
		errs = append(errs, "DB_URL cannot be empty")
	}
	if len(cfg.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Sprintf("SESSION_TTL must be positive, got: %s", cfg.SessionTTL))
	}
	if cfg.BusinessDayCutoff < 0 || cfg.BusinessDayCutoff > 23 {
		errs = append(errs, fmt.Sprintf("BUSINESS_DAY_CUTOFF_HOUR must be between 0 and 23, got: %d", cfg.BusinessDayCutoff))
	}
	if cfg.EstimateBuffer < 0 {
		errs = append(errs, fmt.Sprintf("ESTIMATE_BUFFER cannot be negative, got: %s", cfg.EstimateBuffer))
	}
	if cfg.CounterRetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("COUNTER_RETENTION_DAYS must be positive, got: %d", cfg.CounterRetentionDays))
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("TIMEZONE is not a known location: %s", cfg.Timezone))
	} else {
		cfg.Location = loc
	}
	if cfg.MongoURI != "" && !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, "MONGO_URI must start with 'mongodb://' or 'mongodb+srv://'")
	}
	if cfg.TwilioAccountSID != "" && (cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "") {
		errs = append(errs, "TWILIO_AUTH_TOKEN and TWILIO_FROM are required when TWILIO_ACCOUNT_SID is set")
	}

	if len(errs) > 0 {
		msg := "Configuration validation failed:\n"
		for i, e := range errs {
			msg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) TwilioEnabled() bool {
	return cfg.TwilioAccountSID != ""
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"db_url", redactURL(cfg.DBURL),
		"session_ttl", cfg.SessionTTL,
		"admin_login_enabled", cfg.AdminPasswordHash != "",
		"timezone", cfg.Timezone,
		"business_day_cutoff_hour", cfg.BusinessDayCutoff,
		"estimate_buffer", cfg.EstimateBuffer,
		"counter_retention_days", cfg.CounterRetentionDays,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_topic", cfg.KafkaTopic,
		"mongo_uri", redactURL(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabase,
		"twilio_enabled", cfg.TwilioEnabled(),
		"cors_origins", strings.Join(cfg.CORSOrigins, ","),
		"log_level", cfg.LogLevel,
	)
}

var credentialRegex = regexp.MustCompile(`(://)[^:/@]+:[^@]+@`)

func redactURL(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}
