package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Logging    LoggingConfig    `json:"logging"`
	Monitoring MonitoringConfig `json:"monitoring"`
	Notify     NotifyConfig     `json:"notify"`
	Probes     []ProbeConfig    `json:"probes"`
}

type ServerConfig struct {
	BindAddr  string `json:"bindAddr"`
	AuthToken string `json:"authToken"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// MonitoringConfig drives the scheduler loops and sweep policies. Interval
// fields are duration strings such as "30s"; invalid values fall back to the
// documented defaults.
type MonitoringConfig struct {
	HealthCheckInterval      string  `json:"healthCheckInterval"`
	MetricCollectionInterval string  `json:"metricCollectionInterval"`
	AlertCheckInterval       string  `json:"alertCheckInterval"`
	UptimeInterval           string  `json:"uptimeInterval"`
	CleanupInterval          string  `json:"cleanupInterval"`
	ProbeTimeout             string  `json:"probeTimeout"`
	MetricRetentionDays      int     `json:"metricRetentionDays"`
	AlertRetentionDays       int     `json:"alertRetentionDays"`
	MemoryDegradedPct        float64 `json:"memoryDegradedPct"`
	LoadDegradedFactor       float64 `json:"loadDegradedFactor"`
	ResponseTimeDegraded     string  `json:"responseTimeDegraded"`
	RulesFile                string  `json:"rulesFile"`
}

type NotifyConfig struct {
	SMTPHost         string   `json:"smtpHost"`
	SMTPPort         int      `json:"smtpPort"`
	EmailFrom        string   `json:"emailFrom"`
	EmailPassword    string   `json:"emailPassword"`
	EmailReceivers   []string `json:"emailReceivers"`
	SlackToken       string   `json:"slackToken"`
	SlackChannel     string   `json:"slackChannel"`
	WebhookURL       string   `json:"webhookURL"`
	WebhookTimeout   string   `json:"webhookTimeout"`
	DashboardChannel string   `json:"dashboardChannel"`
	DispatchTimeout  string   `json:"dispatchTimeout"`
}

// ProbeConfig names one monitored service and its health endpoint.
type ProbeConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()
	return LoadFrom(*configFile)
}

// LoadFrom builds config from env defaults and an optional JSON overlay file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			BindAddr:  getEnv("SERVER_BIND_ADDR", "0.0.0.0:8080"),
			AuthToken: getEnv("SERVER_AUTH_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "sentinel"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "sentinel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Monitoring: MonitoringConfig{
			HealthCheckInterval:      getEnv("HEALTH_CHECK_INTERVAL", "30s"),
			MetricCollectionInterval: getEnv("METRIC_COLLECTION_INTERVAL", "60s"),
			AlertCheckInterval:       getEnv("ALERT_CHECK_INTERVAL", "30s"),
			UptimeInterval:           getEnv("UPTIME_INTERVAL", "300s"),
			CleanupInterval:          getEnv("CLEANUP_INTERVAL", "24h"),
			ProbeTimeout:             getEnv("PROBE_TIMEOUT", "5s"),
			MetricRetentionDays:      getEnvInt("METRIC_RETENTION_DAYS", 30),
			AlertRetentionDays:       getEnvInt("ALERT_RETENTION_DAYS", 90),
			MemoryDegradedPct:        getEnvFloat("MEMORY_DEGRADED_PCT", 85),
			LoadDegradedFactor:       getEnvFloat("LOAD_DEGRADED_FACTOR", 0.8),
			ResponseTimeDegraded:     getEnv("RESPONSE_TIME_DEGRADED", "2s"),
			RulesFile:                getEnv("SENTINEL_RULES_FILE", ""),
		},
		Notify: NotifyConfig{
			SMTPHost:         getEnv("SMTP_HOST", ""),
			SMTPPort:         getEnvInt("SMTP_PORT", 587),
			EmailFrom:        getEnv("EMAIL_FROM", ""),
			EmailPassword:    getEnv("EMAIL_PASSWORD", ""),
			EmailReceivers:   splitList(getEnv("EMAIL_RECEIVERS", "")),
			SlackToken:       getEnv("SLACK_TOKEN", ""),
			SlackChannel:     getEnv("SLACK_CHANNEL", "#ops-alerts"),
			WebhookURL:       getEnv("ALERT_WEBHOOK_URL", ""),
			WebhookTimeout:   getEnv("ALERT_WEBHOOK_TIMEOUT", "10s"),
			DashboardChannel: getEnv("DASHBOARD_CHANNEL", "sentinel:alerts"),
			DispatchTimeout:  getEnv("DISPATCH_TIMEOUT", "15s"),
		},
	}

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Monitoring.MemoryDegradedPct == 0 {
		cfg.Monitoring.MemoryDegradedPct = 85
	}
	if cfg.Monitoring.LoadDegradedFactor == 0 {
		cfg.Monitoring.LoadDegradedFactor = 0.8
	}
	if cfg.Monitoring.MetricRetentionDays == 0 {
		cfg.Monitoring.MetricRetentionDays = 30
	}
	if cfg.Monitoring.AlertRetentionDays == 0 {
		cfg.Monitoring.AlertRetentionDays = 90
	}
	return cfg, nil
}

// Duration parses a duration field, falling back when empty or malformed.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return fallback
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
