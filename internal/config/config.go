package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Relay struct {
	Address     string
	Port        string
	Workers     int
	MaxFrame    int
	ReadTimeout time.Duration
}

// ListenAddr is the TCP address sensors connect to.
func (r Relay) ListenAddr() string { return net.JoinHostPort(r.Address, r.Port) }

type Tables struct {
	Schema string
	Sensor string
}

type Kafka struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether readings should be forwarded to Kafka.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Postgres struct {
	URL      string
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	HTTPAddr string
	CacheCap int

	Relay   Relay
	Pg      Postgres
	Tables  Tables
	Kafka   Kafka
	Breaker Breaker
	Retry   Retry
	Log     Log
}

// Load fatals on error; main has nothing better to do with a bad config.
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTPAddr: envDefault("HTTP_ADDR", ":8081"),
		CacheCap: envInt("CACHE_CAP", 1000),

		Relay: Relay{
			Address:     envDefault("ADDRESS", "0.0.0.0"),
			Port:        envDefault("PORT", "7878"),
			Workers:     envInt("RELAY_WORKERS", 8),
			MaxFrame:    envInt("MAX_FRAME_BYTES", 64<<10),
			ReadTimeout: envDurationMS("READ_TIMEOUT", 30*time.Second),
		},

		Pg: Postgres{
			URL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
			Host:     strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:     envDefault("PG_PORT", "5432"),
			DB:       strings.TrimSpace(os.Getenv("PG_DB")),
			User:     strings.TrimSpace(os.Getenv("PG_USER")),
			Password: strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:  envDefault("PG_SSLMODE", "disable"),
		},

		Tables: Tables{
			Schema: envDefault("DB_SCHEMA", "public"),
			Sensor: envDefault("TBL_SENSOR", "sensor_data"),
		},

		Kafka: Kafka{
			Brokers: splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:   envDefault("KAFKA_TOPIC", "sensor-readings"),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 5),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},

		Log: Log{
			Level:  envDefault("LOG_LEVEL", "info"),
			Format: envDefault("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

// Sensor configures the simulator in cmd/sensor.
type Sensor struct {
	DeviceID  uint32
	Count     int
	RelayAddr string
	Interval  time.Duration
	HTTPAddr  string
	Log       Log
}

func LoadSensor() Sensor {
	_ = godotenv.Load("env/.env")

	cfg := Sensor{
		DeviceID:  envUint32("DEVICE_ID", 121),
		Count:     envInt("SENSOR_COUNT", 1),
		RelayAddr: envDefault("RELAY_ADDR", "127.0.0.1:7878"),
		Interval:  envDurationMS("SEND_INTERVAL", time.Second),
		HTTPAddr:  strings.TrimSpace(os.Getenv("SENSOR_HTTP_ADDR")),
		Log: Log{
			Level:  envDefault("LOG_LEVEL", "info"),
			Format: envDefault("LOG_FORMAT", "console"),
		},
	}
	if cfg.Count < 1 {
		log.Printf("SENSOR_COUNT is %d, adjusting to 1", cfg.Count)
		cfg.Count = 1
	}
	if cfg.Interval <= 0 {
		log.Printf("SEND_INTERVAL is %v, adjusting to 1s", cfg.Interval)
		cfg.Interval = time.Second
	}
	return cfg
}

func (c Config) validate() error {
	if c.Pg.URL == "" {
		var missing []string
		req := map[string]string{
			"PG_HOST":     c.Pg.Host,
			"PG_DB":       c.Pg.DB,
			"PG_USER":     c.Pg.User,
			"PG_PASSWORD": c.Pg.Password,
		}
		for k, v := range req {
			if v == "" {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return &missingEnvError{Keys: missing}
		}
	}

	if c.Relay.Workers < 1 {
		return fmt.Errorf("RELAY_WORKERS must be > 0, got %d", c.Relay.Workers)
	}
	if c.Relay.MaxFrame < 1 {
		return fmt.Errorf("MAX_FRAME_BYTES must be > 0, got %d", c.Relay.MaxFrame)
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return &missingEnvError{Keys: []string{"KAFKA_TOPIC"}}
	}
	return nil
}

func (c *Config) normalize() {
	if c.CacheCap <= 0 {
		log.Printf("CACHE_CAP is %d, adjusting to 1", c.CacheCap)
		c.CacheCap = 1
	}
	if c.Retry.Attempts < 1 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 1", c.Retry.Attempts)
		c.Retry.Attempts = 1
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

// DSN returns DATABASE_URL when set, otherwise builds a postgres URL from the
// PG_* parts with user/pass escaped.
func (c Config) DSN() string {
	if c.Pg.URL != "" {
		return c.Pg.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m").
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
