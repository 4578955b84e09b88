package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/event"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/harvest"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/rabbitmq"
)

type Config struct {
	Port           string
	UploadDir      string
	MaxBodyBytes   int64
	ShutdownGrace  time.Duration
	GRPCHealthPort string // vuoto = disabilitato

	EfficiencyWeight float64
	CatalogPath      string
	SessionTTL       time.Duration

	// Export eventi (opzionale)
	InfluxURL      string
	InfluxToken    string
	InfluxOrg      string
	InfluxBucket   string
	MQTTEnabled    bool
	Rabbit         rabbitmq.RabbitMQConfig
	EventTopic     string
	HarvestTopic   string
	Breaker        event.BreakerConfig
	EventQueueSize int
	DedupTTL       time.Duration
	StrictReadyz   bool
	FlushInterval  time.Duration
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// getenvDuration accepts Go durations ("90s") or plain milliseconds.
func getenvDuration(k string, d time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:           getenv("PORT", "5000"),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxBodyBytes:   int64(getenvInt("MAX_BODY_BYTES", 10<<20)),
		ShutdownGrace:  getenvDuration("SHUTDOWN_GRACE", 5*time.Second),
		GRPCHealthPort: getenv("GRPC_HEALTH_PORT", ""),

		EfficiencyWeight: getenvFloat("EFFICIENCY_WEIGHT", advisor.DefaultEfficiencyWeight),
		CatalogPath:      getenv("CATALOG_PATH", ""),
		SessionTTL:       getenvDuration("SESSION_TTL", 24*time.Hour),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    getenv("INFLUX_ORG", "agri"),
		InfluxBucket: getenv("INFLUX_BUCKET", "advisor"),
		MQTTEnabled:  getenvBool("MQTT_ENABLED", false),
		Rabbit: rabbitmq.RabbitMQConfig{
			Host:       getenv("RABBITMQ_HOST", "localhost"),
			Port:       getenvInt("RABBITMQ_PORT", 1883),
			User:       getenv("RABBITMQ_USER", "guest"),
			Password:   getenv("RABBITMQ_PASSWORD", "guest"),
			ClientID:   getenv("HOSTNAME", "agri-advisor"),
			MaxRetries: getenvInt("RABBITMQ_MAX_RETRIES", 5),
			MaxElapsed: getenvDuration("RABBITMQ_MAX_ELAPSED", 10*time.Second),
		},
		EventTopic:   getenv("EVENT_TOPIC", event.DefaultTopicTemplate),
		HarvestTopic: getenv("HARVEST_TOPIC", harvest.DefaultTopic),
		Breaker: event.BreakerConfig{
			Failures: getenvInt("CB_FAILURES", 3),
			OpenFor:  getenvDuration("CB_OPEN_MS", 30*time.Second),
			Interval: getenvDuration("CB_INTERVAL_MS", 0),
		},
		EventQueueSize: getenvInt("EVENT_QUEUE_SIZE", event.DefaultQueueSize),
		DedupTTL:       getenvDuration("DEDUP_TTL", 10*time.Minute),
		StrictReadyz:   getenvBool("READYZ_STRICT", false),
		FlushInterval:  getenvDuration("WRITE_FLUSH_INTERVAL_MS", 200*time.Millisecond),
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a number", c.Port))
	}
	if c.GRPCHealthPort != "" {
		if _, err := strconv.Atoi(c.GRPCHealthPort); err != nil {
			errs = append(errs, fmt.Errorf("GRPC_HEALTH_PORT %q is not a number", c.GRPCHealthPort))
		}
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.EfficiencyWeight <= 0 {
		errs = append(errs, errors.New("EFFICIENCY_WEIGHT must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	if c.InfluxURL != "" && c.InfluxToken == "" {
		errs = append(errs, errors.New("INFLUX_TOKEN is required when INFLUX_URL is set"))
	}
	if c.EventQueueSize < 1 {
		errs = append(errs, errors.New("EVENT_QUEUE_SIZE must be at least 1"))
	}
	if c.Breaker.Failures < 1 {
		errs = append(errs, errors.New("CB_FAILURES must be at least 1"))
	}
	return errors.Join(errs...)
}
