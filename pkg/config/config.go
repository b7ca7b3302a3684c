package config

import (
	"agenda/pkg/logger"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers       []string
	BookingEventsTopic string

	AvailabilityStoreURL string
	AvailabilityRPS      int

	Port string

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	WorkStart           string
	WorkEnd             string
	SlotStepMin         int
	MaxConcurrentChecks int
	MaxAlternatives     int
	TimeZone            string

	SubmissionTTL time.Duration
	SessionTTL    time.Duration
	SlotLockTTL   time.Duration

	RateLimitRPS   int
	RateLimitBurst int
	IdempotencyTTL time.Duration
	PhoneRegion    string

	RequestTimeout  time.Duration
	MaxRequestSize  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		KafkaBrokers:       getEnvList(EnvKafkaBrokers),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),

		AvailabilityStoreURL: getEnvStr(EnvAvailabilityStoreURL, ""),
		AvailabilityRPS:      getEnvNum(EnvAvailabilityRPS, DefaultAvailabilityRPS),

		Port: getEnvStr(EnvPort, DefaultPort),

		RetryMaxAttempts: getEnvNum(EnvRetryMaxAttempts, DefaultRetryMaxAttempts),
		RetryBaseDelay:   getEnvDuration(EnvRetryBaseDelay, DefaultRetryBaseDelay),

		WorkStart:           getEnvStr(EnvWorkStart, DefaultWorkStart),
		WorkEnd:             getEnvStr(EnvWorkEnd, DefaultWorkEnd),
		SlotStepMin:         getEnvNum(EnvSlotStepMin, DefaultSlotStepMin),
		MaxConcurrentChecks: getEnvNum(EnvMaxConcurrentChecks, DefaultMaxConcurrentChecks),
		MaxAlternatives:     getEnvNum(EnvMaxAlternatives, DefaultMaxAlternatives),
		TimeZone:            getEnvStr(EnvTimeZone, DefaultTimeZone),

		SubmissionTTL: getEnvDuration(EnvSubmissionTTL, DefaultSubmissionTTL),
		SessionTTL:    getEnvDuration(EnvSessionTTL, DefaultSessionTTL),
		SlotLockTTL:   getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),

		RateLimitRPS:   getEnvNum(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst: getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		PhoneRegion:    getEnvStr(EnvPhoneRegion, DefaultPhoneRegion),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize:  getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RetryMaxAttempts < 0 {
		errors = append(errors, fmt.Sprintf("RetryMaxAttempts cannot be negative, got: %d", cfg.RetryMaxAttempts))
	}
	if cfg.RetryBaseDelay < 0 {
		errors = append(errors, fmt.Sprintf("RetryBaseDelay cannot be negative, got: %s", cfg.RetryBaseDelay))
	}

	if !timeOfDayRegex.MatchString(cfg.WorkStart) {
		errors = append(errors, fmt.Sprintf("WorkStart must be in HH:MM format (00:00-23:59), got: %s", cfg.WorkStart))
	}
	if !timeOfDayRegex.MatchString(cfg.WorkEnd) {
		errors = append(errors, fmt.Sprintf("WorkEnd must be in HH:MM format (00:00-23:59), got: %s", cfg.WorkEnd))
	}
	if timeOfDayRegex.MatchString(cfg.WorkStart) && timeOfDayRegex.MatchString(cfg.WorkEnd) && cfg.WorkEnd <= cfg.WorkStart {
		errors = append(errors, fmt.Sprintf("WorkEnd (%s) must be after WorkStart (%s)", cfg.WorkEnd, cfg.WorkStart))
	}
	if cfg.SlotStepMin <= 0 {
		errors = append(errors, fmt.Sprintf("SlotStepMin must be positive, got: %d", cfg.SlotStepMin))
	}
	if cfg.MaxConcurrentChecks <= 0 {
		errors = append(errors, fmt.Sprintf("MaxConcurrentChecks must be positive, got: %d", cfg.MaxConcurrentChecks))
	}
	if cfg.MaxAlternatives < 0 {
		errors = append(errors, fmt.Sprintf("MaxAlternatives cannot be negative, got: %d", cfg.MaxAlternatives))
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be a valid IANA zone, got: %s", cfg.TimeZone))
	}

	if cfg.SubmissionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SubmissionTTL must be positive, got: %s", cfg.SubmissionTTL))
	}
	if cfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL must be positive, got: %s", cfg.SessionTTL))
	}
	if cfg.SlotLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SlotLockTTL must be positive, got: %s", cfg.SlotLockTTL))
	}
	if cfg.AvailabilityRPS <= 0 {
		errors = append(errors, fmt.Sprintf("AvailabilityRPS must be positive, got: %d", cfg.AvailabilityRPS))
	}

	if cfg.RateLimitRPS <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRPS must be positive, got: %d", cfg.RateLimitRPS))
	}
	if cfg.RateLimitBurst < cfg.RateLimitRPS {
		errors = append(errors, fmt.Sprintf("RateLimitBurst must be at least RateLimitRPS, got: %d", cfg.RateLimitBurst))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if len(cfg.PhoneRegion) != 2 {
		errors = append(errors, fmt.Sprintf("PhoneRegion must be a two-letter region code, got: %s", cfg.PhoneRegion))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"redis_db", cfg.RedisDB,
		"kafka_brokers", cfg.KafkaBrokers,
		"booking_events_topic", cfg.BookingEventsTopic,
		"availability_store_url", cfg.AvailabilityStoreURL,
		"availability_rps", cfg.AvailabilityRPS,
		"port", cfg.Port,
		"retry_max_attempts", cfg.RetryMaxAttempts,
		"retry_base_delay", cfg.RetryBaseDelay,
		"work_start", cfg.WorkStart,
		"work_end", cfg.WorkEnd,
		"slot_step_min", cfg.SlotStepMin,
		"max_concurrent_checks", cfg.MaxConcurrentChecks,
		"max_alternatives", cfg.MaxAlternatives,
		"time_zone", cfg.TimeZone,
		"submission_ttl", cfg.SubmissionTTL,
		"session_ttl", cfg.SessionTTL,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"phone_region", cfg.PhoneRegion,
		"request_timeout", cfg.RequestTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

// Location resolves TimeZone, falling back to UTC when it cannot be loaded.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
