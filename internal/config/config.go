package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Twilio     TwilioConfig
	Maps       MapsConfig
	OpenAI     OpenAIConfig
	SMTP       SMTPConfig
	Pricing    PricingConfig
	Scheduling SchedulingConfig
	Company    CompanyConfig
	Speech     SpeechConfig
}

type AppConfig struct {
	Env  string
	Port int
	// PublicBaseURL is the externally reachable origin Twilio posts
	// webhooks to, e.g. https://voice.example.com.
	PublicBaseURL string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for AWS-ready posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// SMSEnabled gates outbound texting; local runs leave it off and the
	// sender logs instead.
	SMSEnabled bool
}

type MapsConfig struct {
	APIKey        string
	OfficeAddress string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	ManagerEmail string
}

type PricingConfig struct {
	MileageFreeRadius float64
	MileageRate       float64
	TravelTimeHours   float64
	PackingFee        float64
}

type SchedulingConfig struct {
	WorkStart           int
	WorkEnd             int
	DefaultBookingHours int
	MorningJobCapacity  int
	MaxAlternatives     int
	PrewarmDays         int
	// LongDistanceTravelHours is the drive time past which a move is
	// scheduled by day instead of by hour.
	LongDistanceTravelHours float64
}

type CompanyConfig struct {
	Name string
	// ManagerPhone receives transfers and manager copies of estimate texts.
	ManagerPhone string
	// OfficePhoneSpoken is the office number spelled digit by digit for
	// text-to-speech, e.g. "2 8 1, 7 4 3, 4 5 0 3".
	OfficePhoneSpoken string
	OfficePhone       string
}

type SpeechConfig struct {
	Language string
	Voice    string
	// Hints biases Twilio ASR toward domain vocabulary.
	Hints string
	// ZipGuidance appends keypad guidance to ZIP prompts.
	ZipGuidance bool
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

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.FromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))
	c.Twilio.SMSEnabled = boolEnv("TWILIO_SMS_ENABLED")

	c.Maps.APIKey = strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	c.Maps.OfficeAddress = strings.TrimSpace(os.Getenv("OFFICE_ADDRESS"))

	c.OpenAI.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.OpenAI.Model = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))

	c.SMTP.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	c.SMTP.Port = optionalInt("SMTP_PORT", 587)
	c.SMTP.Username = strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	c.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	c.SMTP.From = strings.TrimSpace(os.Getenv("SMTP_FROM"))
	c.SMTP.ManagerEmail = strings.TrimSpace(os.Getenv("MANAGER_EMAIL"))

	c.Pricing.MileageFreeRadius = optionalFloat("PRICING_FREE_RADIUS_MILES", 0)
	c.Pricing.MileageRate = optionalFloat("PRICING_MILEAGE_RATE", 0)
	c.Pricing.TravelTimeHours = optionalFloat("PRICING_TRAVEL_TIME_HOURS", 0)
	c.Pricing.PackingFee = optionalFloat("PRICING_PACKING_FEE", 0)

	c.Scheduling.WorkStart = optionalInt("SCHED_WORK_START", 0)
	c.Scheduling.WorkEnd = optionalInt("SCHED_WORK_END", 0)
	c.Scheduling.DefaultBookingHours = optionalInt("SCHED_DEFAULT_BOOKING_HOURS", 0)
	c.Scheduling.MorningJobCapacity = optionalInt("SCHED_MORNING_JOB_CAPACITY", 0)
	c.Scheduling.MaxAlternatives = optionalInt("SCHED_MAX_ALTERNATIVES", 0)
	c.Scheduling.PrewarmDays = optionalInt("SCHED_PREWARM_DAYS", 0)
	c.Scheduling.LongDistanceTravelHours = optionalFloat("SCHED_LONG_DISTANCE_TRAVEL_HOURS", 0)

	c.Company.Name = strings.TrimSpace(os.Getenv("COMPANY_NAME"))
	c.Company.ManagerPhone = strings.TrimSpace(os.Getenv("MANAGER_PHONE"))
	c.Company.OfficePhoneSpoken = strings.TrimSpace(os.Getenv("OFFICE_PHONE_SPOKEN"))
	c.Company.OfficePhone = strings.TrimSpace(os.Getenv("OFFICE_PHONE"))

	c.Speech.Language = strings.TrimSpace(os.Getenv("SPEECH_LANGUAGE"))
	c.Speech.Voice = strings.TrimSpace(os.Getenv("SPEECH_VOICE"))
	c.Speech.Hints = strings.TrimSpace(os.Getenv("SPEECH_HINTS"))
	c.Speech.ZipGuidance = boolEnv("SPEECH_ZIP_GUIDANCE")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// applyDefaults fills local-friendly values; production requirements are
// enforced in Validate.
func (c *Config) applyDefaults() {
	if c.DB.SSLMode == "" && !c.IsProduction() {
		c.DB.SSLMode = "disable"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" && c.IsProduction() {
		errs = append(errs, errors.New("DB_SSLMODE is required in production"))
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if c.IsProduction() {
		if c.App.PublicBaseURL == "" {
			errs = append(errs, errors.New("PUBLIC_BASE_URL is required in production"))
		}
		if c.Twilio.AccountSID == "" {
			errs = append(errs, errors.New("TWILIO_ACCOUNT_SID is required in production"))
		}
		if c.Twilio.AuthToken == "" {
			errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required in production"))
		}
		if c.Twilio.FromNumber == "" {
			errs = append(errs, errors.New("TWILIO_FROM_NUMBER is required in production"))
		}
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
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

// WebhookURL joins the public base with a webhook path for outbound calls.
func (c Config) WebhookURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.App.PublicBaseURL + path
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

func optionalInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func optionalFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func boolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
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
