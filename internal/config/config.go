package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env         Env
	Server      ServerConfig
	Persistence PersistenceConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	Storage     StorageConfig
	S3          S3Config `envconfig:"AWS"`
	Spaces      S3Config `envconfig:"DO"`
	GCS         GCSConfig
	Sequence    SequenceConfig
	Redis       RedisConfig
	NATS        NATSConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type PersistenceConfig struct {
	Driver string `envconfig:"PERSISTENCE_DRIVER" default:"postgres"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" default:"localhost"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" default:"postgres"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_NAME" default:"restaurant"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DATABASE" default:"restaurant"`
}

// StorageConfig selects the default storage provider. BaseHost is the public
// host of this service, used to build absolute URIs for the local provider.
type StorageConfig struct {
	DefaultProvider string `envconfig:"FILE_SPACE_PROVIDER" default:"LOCAL"`
	BaseHost        string `envconfig:"BE_HOST" default:"http://localhost:8080"`
	LocalDir        string `envconfig:"LOCAL_STORAGE_DIR" default:"./uploads"`
}

// S3Config configures an S3-compatible bucket. Endpoint is a host without
// scheme, e.g. s3.amazonaws.com or ams3.digitaloceanspaces.com.
type S3Config struct {
	Endpoint  string `envconfig:"ENDPOINT"`
	Region    string `envconfig:"REGION"`
	Bucket    string `envconfig:"BUCKET_NAME"`
	AccessKey string `envconfig:"ACCESS_KEY_ID"`
	SecretKey string `envconfig:"SECRET_ACCESS_KEY"`
	UseSSL    bool   `envconfig:"USE_SSL" default:"true"`
	PublicURL string `envconfig:"PUBLIC_URL"`
}

// Enabled reports whether the bucket is configured
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// GCSConfig configures a Google Cloud Storage bucket. EmulatorHost points the
// client at a fake-gcs-server instead of the real API.
type GCSConfig struct {
	Bucket          string `envconfig:"GCS_BUCKET_NAME"`
	CredentialsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	CDNDomain       string `envconfig:"CDN_DOMAIN"`
	EmulatorHost    string `envconfig:"STORAGE_EMULATOR_HOST"`
}

// Enabled reports whether the bucket is configured
func (c GCSConfig) Enabled() bool {
	return c.Bucket != ""
}

// SequenceConfig selects how domain codes are allocated. "latest" derives the
// next code from the most recent record, "redis" uses an atomic counter.
type SequenceConfig struct {
	Strategy       string        `envconfig:"SEQUENCE_STRATEGY" default:"latest"`
	CreateAttempts uint64        `envconfig:"SEQUENCE_CREATE_ATTEMPTS" default:"3"`
	RetryInterval  time.Duration `envconfig:"SEQUENCE_RETRY_INTERVAL" default:"50ms"`
}

type RedisConfig struct {
	URL         string        `envconfig:"REDIS_URL"`
	PoolSize    int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	KeyPrefix   string        `envconfig:"REDIS_KEY_PREFIX" default:"sequence:"`
}

// NATSConfig configures the entity event stream. Events are published on
// <SubjectPrefix>.<kind>.<type>, publishing is disabled when URL is empty.
type NATSConfig struct {
	URL           string `envconfig:"NATS_URL"`
	ClientName    string `envconfig:"NATS_CLIENT_NAME" default:"restaurant-menu"`
	StreamName    string `envconfig:"NATS_STREAM_NAME" default:"RESTAURANT_EVENTS"`
	SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"restaurant"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
