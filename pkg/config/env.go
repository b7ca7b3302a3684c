package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"

	EnvAvailabilityStoreURL = "AVAILABILITY_STORE_URL"
	EnvAvailabilityRPS      = "AVAILABILITY_RPS"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRetryMaxAttempts = "RETRY_MAX_ATTEMPTS"
	EnvRetryBaseDelay   = "RETRY_BASE_DELAY"

	EnvWorkStart           = "WORK_START"
	EnvWorkEnd             = "WORK_END"
	EnvSlotStepMin         = "SLOT_STEP_MIN"
	EnvMaxConcurrentChecks = "MAX_CONCURRENT_CHECKS"
	EnvMaxAlternatives     = "MAX_ALTERNATIVES"
	EnvTimeZone            = "TIME_ZONE"

	EnvSubmissionTTL = "SUBMISSION_TTL"
	EnvSessionTTL    = "SESSION_TTL"
	EnvSlotLockTTL   = "SLOT_LOCK_TTL"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvPhoneRegion    = "PHONE_REGION"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvMaxRequestSize  = "MAX_REQUEST_SIZE"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
