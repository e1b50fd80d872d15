package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Records  RecordsConfig  `yaml:"records"`
	Auth     AuthConfig     `yaml:"auth"`
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"LEKARNA_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"LEKARNA_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"LEKARNA_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"LEKARNA_IDLE_TIMEOUT"     env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"LEKARNA_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// DatabaseConfig holds the SQLite database used for accounts, settings and
// (with the sqlite backend) inventory records.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"LEKARNA_DB" env-default:"lekarna.sqlite3"`
}

// Record backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// RecordsConfig selects where medications, vitamins and health products live.
type RecordsConfig struct {
	Backend       string `yaml:"backend"        env:"LEKARNA_RECORDS_BACKEND" env-default:"sqlite"`
	MongoURI      string `yaml:"mongo_uri"      env:"LEKARNA_MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"LEKARNA_MONGO_DATABASE"  env-default:"lekarna"`
}

// Reset token delivery modes.
const (
	DeliveryLog      = "log"
	DeliveryResponse = "response"
)

// AuthConfig holds token settings. An empty JWTSecret means the secret is
// generated once and kept in the settings table.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"           env:"LEKARNA_JWT_SECRET"`
	TokenTTL           time.Duration `yaml:"token_ttl"            env:"LEKARNA_TOKEN_TTL"            env-default:"168h"`
	ResetTokenTTL      time.Duration `yaml:"reset_token_ttl"      env:"LEKARNA_RESET_TOKEN_TTL"      env-default:"1h"`
	ResetTokenDelivery string        `yaml:"reset_token_delivery" env:"LEKARNA_RESET_TOKEN_DELIVERY" env-default:"log"`
}

// CalendarConfig holds the time zone used to decide which calendar day an
// instant falls on.
type CalendarConfig struct {
	Timezone string `yaml:"timezone" env:"LEKARNA_TIMEZONE" env-default:"Local"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LEKARNA_LOG_LEVEL" env-default:"info"`
	Path  string `yaml:"path"  env:"LEKARNA_LOG"`
}
