package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "agenda"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultBookingEventsTopic = "booking.events"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// Fixed cadence observed on both availability checks and submission.
	DefaultRetryMaxAttempts = 2
	DefaultRetryBaseDelay   = 1000 * time.Millisecond

	DefaultWorkStart           = "08:00"
	DefaultWorkEnd             = "18:00"
	DefaultSlotStepMin         = 30
	DefaultMaxConcurrentChecks = 10
	DefaultMaxAlternatives     = 3
	DefaultTimeZone            = "America/Sao_Paulo"

	DefaultSubmissionTTL = 10 * time.Minute
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSlotLockTTL   = 10 * time.Second

	DefaultAvailabilityRPS = 50

	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
	DefaultIdempotencyTTL = 10 * time.Minute
	DefaultPhoneRegion    = "BR"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxRequestSize  = 64 * 1024
)
