package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	MongoURI       string   `envconfig:"MONGO_URI" required:"true"`
	MongoDatabase  string   `envconfig:"MONGO_DATABASE" default:"carmarket"`
	JWTSecret      string   `envconfig:"JWT_SECRET"`
	JWTExpiry      string   `envconfig:"JWT_EXPIRY" default:"24h"`
	AllowedOrigins []string `ignored:"true"`
	RunMode        string   `envconfig:"RUN_MODE" default:"all"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`

	// Raw comma separated origins, split into AllowedOrigins by Load.
	RawAllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	Redis    RedisConfig   `envconfig:"REDIS"`
	NLU      NLUConfig     `envconfig:"NLU"`
	Twilio   TwilioConfig  `envconfig:"TWILIO"`
	Alerts   AlertConfig   `envconfig:"ALERT"`
	Listings ListingConfig `envconfig:"LISTING"`
}

type RedisConfig struct {
	URL          string        `envconfig:"URL"`
	Host         string        `envconfig:"HOST" default:"localhost"`
	Port         string        `envconfig:"PORT" default:"6379"`
	Password     string        `envconfig:"PASSWORD"`
	DB           int           `envconfig:"DB" default:"0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIN_IDLE_CONNS" default:"2"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryDelay   time.Duration `envconfig:"RETRY_DELAY" default:"500ms"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
	PoolTimeout  time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
}

// Addr returns host:port for clients that do not take a URL (asynq).
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type NLUConfig struct {
	Provider string        `envconfig:"PROVIDER" default:"openai"`
	BaseURL  string        `envconfig:"BASE_URL" default:"https://api.openai.com/v1"`
	APIKey   string        `envconfig:"API_KEY"`
	Model    string        `envconfig:"MODEL" default:"gpt-5"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"8s"`
}

type TwilioConfig struct {
	AccountSID string        `envconfig:"ACCOUNT_SID"`
	AuthToken  string        `envconfig:"AUTH_TOKEN"`
	From       string        `envconfig:"FROM"`
	BaseURL    string        `envconfig:"BASE_URL" default:"https://api.twilio.com"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

// Enabled reports whether enough credentials are present to talk to Twilio.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

type AlertConfig struct {
	DispatchMode      string        `envconfig:"DISPATCH_MODE" default:"async"`
	NotifyTimeout     time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// ListingConfig controls the periodic expiry sweep. MaxAge 0 disables it.
type ListingConfig struct {
	MaxAge         time.Duration `envconfig:"MAX_AGE" default:"1440h"`
	ExpirySchedule string        `envconfig:"EXPIRY_SCHEDULE" default:"@hourly"`
}

const (
	RunModeAPI    = "api"
	RunModeWorker = "worker"
	RunModeAll    = "all"

	DispatchAsync  = "async"
	DispatchInline = "inline"
)

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "processing environment")
	}

	for _, origin := range strings.Split(cfg.RawAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.MongoURI) == "" {
		return errors.New("MONGO_URI must not be empty")
	}

	switch c.RunMode {
	case RunModeAPI, RunModeWorker, RunModeAll:
	default:
		return errors.Errorf("invalid RUN_MODE %q", c.RunMode)
	}

	switch c.Alerts.DispatchMode {
	case DispatchAsync, DispatchInline:
	default:
		return errors.Errorf("invalid ALERT_DISPATCH_MODE %q", c.Alerts.DispatchMode)
	}

	if c.Listings.MaxAge < 0 {
		return errors.New("LISTING_MAX_AGE must not be negative")
	}

	switch c.NLU.Provider {
	case "openai", "gemini":
	default:
		return errors.Errorf("invalid NLU_PROVIDER %q", c.NLU.Provider)
	}

	return nil
}
