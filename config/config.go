package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	ShipTrack ShipTrackConfig `yaml:"shiptrack"`
	Contact   ContactConfig   `yaml:"contact"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"SHIPTRACK_DB_HOST"`
	Port     int    `yaml:"port" env:"SHIPTRACK_DB_PORT"`
	Username string `yaml:"username" env:"SHIPTRACK_DB_USER"`
	Password string `yaml:"password" env:"SHIPTRACK_DB_PASSWORD"`
	DBName   string `yaml:"name" env:"SHIPTRACK_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SHIPTRACK_DB_SSL_MODE"`
}

type KafkaConfig struct {
	Host                      string `yaml:"host" env:"SHIPTRACK_KAFKA_HOST"`
	Port                      int    `yaml:"port" env:"SHIPTRACK_KAFKA_PORT"`
	StatusChangedTopicName    string `yaml:"status_changed_topic_name" env:"SHIPTRACK_KAFKA_STATUS_TOPIC"`
	ContactSubmittedTopicName string `yaml:"contact_submitted_topic_name" env:"SHIPTRACK_KAFKA_CONTACT_TOPIC"`
}

type RedisConfig struct {
	Host string `yaml:"host" env:"SHIPTRACK_REDIS_HOST"`
	Port int    `yaml:"port" env:"SHIPTRACK_REDIS_PORT"`
}

type ShipTrackConfig struct {
	GRPCAddr         string `yaml:"grpc_addr" env:"SHIPTRACK_GRPC_ADDR"`
	HTTPAddr         string `yaml:"http_addr" env:"SHIPTRACK_HTTP_ADDR"`
	NotifierHTTPAddr string `yaml:"notifier_http_addr" env:"SHIPTRACK_NOTIFIER_HTTP_ADDR"`
	SwaggerPath      string `yaml:"swagger_path" env:"SHIPTRACK_SWAGGER_PATH"`

	// postgres | sqlite | memory
	StoreDriver string `yaml:"store_driver" env:"SHIPTRACK_STORE_DRIVER"`
	SQLitePath  string `yaml:"sqlite_path" env:"SHIPTRACK_SQLITE_PATH"`

	ViewCacheTTLSeconds      int  `yaml:"view_cache_ttl_seconds" env:"SHIPTRACK_VIEW_CACHE_TTL_SECONDS"`
	LookupRateLimitPerMinute int  `yaml:"lookup_rate_limit_per_minute" env:"SHIPTRACK_LOOKUP_RATE_LIMIT_PER_MINUTE"`
	RejectAfterFinal         bool `yaml:"reject_after_final" env:"SHIPTRACK_REJECT_AFTER_FINAL"`

	// только за своим reverse proxy: иначе X-Forwarded-For подделывается клиентом
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"SHIPTRACK_TRUST_PROXY_HEADERS"`

	AuthSecret          string `yaml:"auth_secret" env:"SHIPTRACK_AUTH_SECRET"`
	AuthTokenTTLMinutes int    `yaml:"auth_token_ttl_minutes" env:"SHIPTRACK_AUTH_TOKEN_TTL_MINUTES"`

	KafkaConsumerGroup string `yaml:"kafka_consumer_group" env:"SHIPTRACK_KAFKA_CONSUMER_GROUP"`
}

type ContactConfig struct {
	RelayURL       string `yaml:"relay_url" env:"SHIPTRACK_CONTACT_RELAY_URL"`
	RelayAPIKey    string `yaml:"relay_api_key" env:"SHIPTRACK_CONTACT_RELAY_API_KEY"`
	WhatsAppNumber string `yaml:"whatsapp_number" env:"SHIPTRACK_CONTACT_WHATSAPP_NUMBER"`
	// куда notifier пишет о смене статуса; пусто: только лог
	OpsEmail string `yaml:"ops_email" env:"SHIPTRACK_CONTACT_OPS_EMAIL"`
}

// LoadConfig читает YAML (если путь задан), затем накладывает SHIPTRACK_* из окружения.
func LoadConfig(filename string) (*Config, error) {
	var config Config

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse env overrides: %w", err)
	}

	return &config, nil
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

func (k KafkaConfig) Brokers() []string {
	if k.Host == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
