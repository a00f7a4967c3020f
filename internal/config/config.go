package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "STOREFRONT_"
	// FileEnv names an optional YAML file loaded beneath the environment.
	FileEnv = "STOREFRONT_CONFIG"
)

type Config struct {
	HTTP struct {
		Addr            string        `koanf:"addr"`
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"http"`

	HealthGRPC struct {
		Addr string `koanf:"addr"`
	} `koanf:"health_grpc"`

	Log struct {
		Level       string `koanf:"level"`
		Development bool   `koanf:"development"`
	} `koanf:"log"`

	Tracing struct {
		// SampleRatio is the fraction of new traces recorded, 0 to 1.
		SampleRatio float64 `koanf:"sample_ratio"`
	} `koanf:"tracing"`

	Session struct {
		CookieName      string        `koanf:"cookie_name"`
		CookieSecure    bool          `koanf:"cookie_secure"`
		TTL             time.Duration `koanf:"ttl"`
		CleanupInterval time.Duration `koanf:"cleanup_interval"`
		InboxCapacity   int           `koanf:"inbox_capacity"`
	} `koanf:"session"`

	Admin struct {
		// Password enables the admin API; empty disables it.
		Password string `koanf:"password"`
	} `koanf:"admin"`

	Catalog struct {
		// Backend is "memory" or "sqlite".
		Backend    string `koanf:"backend"`
		SQLitePath string `koanf:"sqlite_path"`
	} `koanf:"catalog"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Mongo struct {
		URI      string `koanf:"uri"`
		Database string `koanf:"database"`
	} `koanf:"mongo"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
	} `koanf:"kafka"`

	Checkout struct {
		Recipient   string        `koanf:"recipient"`
		SinkTimeout time.Duration `koanf:"sink_timeout"`
	} `koanf:"checkout"`

	CORS struct {
		// AllowedOrigins "*" serves any origin without credentials; list
		// origins explicitly to let them send the session cookie.
		AllowedOrigins []string `koanf:"allowed_origins"`
	} `koanf:"cors"`
}

// Default is the configuration of a fully in-memory storefront.
func Default() Config {
	var c Config
	c.HTTP.Addr = ":8080"
	c.HTTP.ReadTimeout = 10 * time.Second
	c.HTTP.WriteTimeout = 15 * time.Second
	c.HTTP.IdleTimeout = 60 * time.Second
	c.HTTP.ShutdownTimeout = 15 * time.Second
	c.HealthGRPC.Addr = ":9090"
	c.Log.Level = "info"
	c.Tracing.SampleRatio = 1
	c.Session.CookieName = "storefront_session"
	c.Session.TTL = 24 * time.Hour
	c.Session.CleanupInterval = time.Minute
	c.Session.InboxCapacity = 20
	c.Catalog.Backend = "memory"
	c.Catalog.SQLitePath = "storefront.db"
	c.Mongo.Database = "storefront"
	c.Kafka.Topic = "storefront-orders"
	c.Checkout.Recipient = "201030566078"
	c.Checkout.SinkTimeout = 5 * time.Second
	c.CORS.AllowedOrigins = []string{"*"}
	return c
}

// Load layers defaults, the optional YAML file named by STOREFRONT_CONFIG and
// STOREFRONT_* environment variables, using "__" for nesting, e.g.
// STOREFRONT_REDIS__ADDR.
func Load() (Config, error) {
	k := koanf.New(".")

	// 1) optional file
	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// 2) environment variables override
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		if s == FileEnv {
			return ""
		}
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr required"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be between 0 and 1"))
	}
	switch c.Catalog.Backend {
	case "memory":
	case "sqlite":
		if c.Catalog.SQLitePath == "" {
			errs = append(errs, errors.New("catalog.sqlite_path required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.backend %q must be memory or sqlite", c.Catalog.Backend))
	}
	if c.Mongo.URI != "" && c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo.database required when mongo.uri is set"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic required when kafka.brokers is set"))
	}
	if c.Checkout.Recipient == "" {
		errs = append(errs, errors.New("checkout.recipient required"))
	}
	return errors.Join(errs...)
}
