package constants

// HTTP header and response keys
const (
	HeaderAuthorization = "Authorization"

	ResponseError = "error"
	FieldMessage  = "message"
)

// Context keys
const (
	ContextKeyUser = "user"
)

// Environment variables and their defaults
const (
	EnvPort             = "PORT"
	EnvAPIBaseURL       = "API_BASE_URL"
	EnvJWTSecret        = "JWT_SECRET"
	EnvSessionTTL       = "SESSION_TTL_MINUTES"
	EnvSessionSweepCron = "SESSION_SWEEP_CRON"

	DefaultPort             = "4000"
	DefaultAPIBaseURL       = "http://localhost:5000/api"
	DefaultSessionTTLMin    = 30
	DefaultSessionSweepCron = "@every 5m"
)
