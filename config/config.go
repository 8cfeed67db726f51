package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Web       WebConfig       `yaml:"web"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	DocStore  DocStoreConfig  `yaml:"docstore"`
	Assets    AssetsConfig    `yaml:"assets"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

// AuthConfig holds the single operator credential. PasswordHash (bcrypt) wins
// over Password when both are set.
type AuthConfig struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type DocStoreConfig struct {
	Driver    string          `yaml:"driver"` // "sanity", "firestore" or "sql"
	Timeout   time.Duration   `yaml:"timeout"`
	Sanity    SanityConfig    `yaml:"sanity"`
	Firestore FirestoreConfig `yaml:"firestore"`
}

type SanityConfig struct {
	ProjectID  string `yaml:"project_id"`
	Dataset    string `yaml:"dataset"`
	APIVersion string `yaml:"api_version"`
	Token      string `yaml:"token"`
	UseCDN     bool   `yaml:"use_cdn"`
	BaseURL    string `yaml:"base_url"` // overrides https://<project>.api.sanity.io
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	Collection      string `yaml:"collection"`
}

type AssetsConfig struct {
	Driver string    `yaml:"driver"` // "sanity" or "gcs"
	Width  int       `yaml:"width"`
	GCS    GCSConfig `yaml:"gcs"`
}

type GCSConfig struct {
	Bucket         string        `yaml:"bucket"`
	AccessID       string        `yaml:"access_id"`
	PrivateKeyFile string        `yaml:"private_key_file"`
	SignedURLTTL   time.Duration `yaml:"signed_url_ttl"`
}

type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ViewTTL  time.Duration `yaml:"view_ttl"`
}

type MessagingConfig struct {
	Backend     string      `yaml:"backend"` // "none", "kafka" or "mqtt"
	EventsTopic string      `yaml:"events_topic"`
	Kafka       KafkaConfig `yaml:"kafka"`
	MQTT        MQTTConfig  `yaml:"mqtt"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

func Defaults() *Config {
	return &Config{
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8090,
			SessionSecret: "change-me-in-production",
		},
		Auth: AuthConfig{
			Email:    "admin@example.com",
			Password: "admin",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "orderdesk.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "orderdesk",
				User:     "orderdesk",
				SSLMode:  "disable",
			},
		},
		DocStore: DocStoreConfig{
			Driver:  "sql",
			Timeout: 10 * time.Second,
			Sanity: SanityConfig{
				Dataset:    "production",
				APIVersion: "2021-10-21",
			},
			Firestore: FirestoreConfig{
				Collection: "orders",
			},
		},
		Assets: AssetsConfig{
			Driver: "sanity",
			Width:  50,
			GCS: GCSConfig{
				SignedURLTTL: 15 * time.Minute,
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			ViewTTL: 12 * time.Hour,
		},
		Messaging: MessagingConfig{
			Backend:     "none",
			EventsTopic: "orderdesk.orders",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "orderdesk",
			},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets secrets stay out of the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("ORDERDESK_SESSION_SECRET"); v != "" {
		c.Web.SessionSecret = v
	}
	if v := os.Getenv("ORDERDESK_SANITY_TOKEN"); v != "" {
		c.DocStore.Sanity.Token = v
	}
	if v := os.Getenv("ORDERDESK_ADMIN_PASSWORD"); v != "" {
		c.Auth.Password = v
		c.Auth.PasswordHash = ""
	}
}
