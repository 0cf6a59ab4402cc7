package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the voice agent process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Twilio   TwilioConfig
	Call     CallConfig
	Greeting GreetingConfig
	CallLog  CallLogConfig
	Redis    RedisConfig
	DB       DBConfig
}

type AppConfig struct {
	Env  string
	Port int

	// PublicBaseURL is the externally reachable base URL the telephony
	// gateway uses to deliver webhooks (answer URL, status callback).
	PublicBaseURL string
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// OperatorKey is the shared credential exchanged for a JWT pair at login.
	OperatorKey string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// CallConfig carries the fixed delivery parameters interpolated into
// voice markup and outbound call placement.
type CallConfig struct {
	Voice    string
	Language string

	// TimeoutSeconds caps ring time for outbound calls.
	TimeoutSeconds int
	Record         bool

	// Speech capture settings for <Gather input="speech">.
	SpeechTimeout  string // "auto" or seconds
	SpeechModel    string
	SpeechEnhanced bool
	GatherTimeout  int // seconds before the gather gives up

	// SessionIdleTTL bounds how long an idle session survives without a
	// terminal status callback. Zero disables the eviction sweep.
	SessionIdleTTL time.Duration
}

type GreetingConfig struct {
	// Store selects the staged-greeting backend: "memory" or "redis".
	Store string

	// TTL bounds how long a staged greeting may wait to be claimed.
	TTL time.Duration
}

type CallLogConfig struct {
	// Backend selects the disposition log: "off", "memory" or "postgres".
	Backend string
}

type RedisConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")
	c.Auth.OperatorKey = os.Getenv("OPERATOR_API_KEY")

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.FromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))

	c.Call.Voice = strings.TrimSpace(os.Getenv("CALL_VOICE"))
	c.Call.Language = strings.TrimSpace(os.Getenv("CALL_LANGUAGE"))
	c.Call.TimeoutSeconds = optInt("CALL_TIMEOUT_SECONDS", 30)
	c.Call.Record = optBool("CALL_RECORD", false)
	c.Call.SpeechTimeout = strings.TrimSpace(os.Getenv("SPEECH_TIMEOUT"))
	c.Call.SpeechModel = strings.TrimSpace(os.Getenv("SPEECH_MODEL"))
	c.Call.SpeechEnhanced = optBool("SPEECH_ENHANCED", true)
	c.Call.GatherTimeout = optInt("GATHER_TIMEOUT_SECONDS", 5)
	c.Call.SessionIdleTTL = mustDuration("SESSION_IDLE_TTL")

	c.Greeting.Store = strings.TrimSpace(os.Getenv("GREETING_STORE"))
	c.Greeting.TTL = mustDuration("GREETING_TTL")

	c.CallLog.Backend = strings.TrimSpace(os.Getenv("CALL_LOG_BACKEND"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = optInt("REDIS_PORT", 6379)

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = optInt("DB_PORT", 5432)
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL is required"))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.OperatorKey == "" && c.IsProduction() {
		errs = append(errs, errors.New("OPERATOR_API_KEY is required in production"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	// Twilio credentials are validated for shape only. Absence is not fatal:
	// the dialer reports "not ready" instead of failing startup, since
	// webhook handling works without outbound credentials.
	if (c.Twilio.AccountSID == "") != (c.Twilio.AuthToken == "") {
		errs = append(errs, errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set together"))
	}
	if c.Twilio.AccountSID != "" && c.Twilio.FromNumber == "" {
		errs = append(errs, errors.New("TWILIO_FROM_NUMBER is required when Twilio credentials are set"))
	}

	if c.Call.Voice == "" {
		c.Call.Voice = "alice"
	}
	if c.Call.Language == "" {
		c.Call.Language = "en-US"
	}
	if c.Call.SpeechTimeout == "" {
		c.Call.SpeechTimeout = "auto"
	}
	if c.Call.SpeechModel == "" {
		c.Call.SpeechModel = "phone_call"
	}
	if c.Call.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CALL_TIMEOUT_SECONDS must be positive, got %d", c.Call.TimeoutSeconds))
	}
	if c.Call.GatherTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GATHER_TIMEOUT_SECONDS must be positive, got %d", c.Call.GatherTimeout))
	}

	switch c.Greeting.Store {
	case "":
		c.Greeting.Store = "memory"
	case "memory":
	case "redis":
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when GREETING_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("GREETING_STORE must be memory or redis, got %q", c.Greeting.Store))
	}
	if c.Greeting.TTL <= 0 {
		c.Greeting.TTL = 10 * time.Minute
	}

	switch c.CallLog.Backend {
	case "":
		c.CallLog.Backend = "memory"
	case "off", "memory":
	case "postgres":
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when CALL_LOG_BACKEND=postgres"))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required when CALL_LOG_BACKEND=postgres"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when CALL_LOG_BACKEND=postgres"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	default:
		errs = append(errs, fmt.Errorf("CALL_LOG_BACKEND must be off, memory or postgres, got %q", c.CallLog.Backend))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// TwilioConfigured reports whether outbound dialing credentials are present.
func (c Config) TwilioConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
