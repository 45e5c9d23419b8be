// Package config loads portal configuration from the environment, an
// optional .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved portal configuration.
type Config struct {
	Env     string  `mapstructure:"env"`
	HTTP    HTTP    `mapstructure:"http"`
	App     App     `mapstructure:"app"`
	Log     Log     `mapstructure:"log"`
	Store   Store   `mapstructure:"store"`
	Mongo   Mongo   `mapstructure:"mongo"`
	Admin   Admin   `mapstructure:"admin"`
	Session Session `mapstructure:"session"`

	Registration Registration `mapstructure:"registration"`
	Receipts     Receipts     `mapstructure:"receipts"`
	S3           S3           `mapstructure:"s3"`
	Metrics      Metrics      `mapstructure:"metrics"`
	Tracing      Tracing      `mapstructure:"tracing"`
	Sheets       Sheets       `mapstructure:"sheets"`
	Export       Export       `mapstructure:"export"`
	Cache        Cache        `mapstructure:"cache"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type App struct {
	URL string `mapstructure:"url"`
}

type Log struct {
	Dir string `mapstructure:"dir"`
}

type Store struct {
	Driver string `mapstructure:"driver"`
}

type Mongo struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Admin struct {
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
	PageSize     int    `mapstructure:"page_size"`
}

type Session struct {
	Secret        string        `mapstructure:"secret"`
	EncryptionKey string        `mapstructure:"encryption_key"`
	TTL           time.Duration `mapstructure:"ttl"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

type Registration struct {
	RequireReceipt bool `mapstructure:"require_receipt"`
}

type Receipts struct {
	Driver   string `mapstructure:"driver"`
	Dir      string `mapstructure:"dir"`
	BaseURL  string `mapstructure:"base_url"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type S3 struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	PublicURL string `mapstructure:"public_url"`
}

type Metrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type Tracing struct {
	Enabled bool   `mapstructure:"enabled"`
	Service string `mapstructure:"service"`
}

type Sheets struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Tab             string `mapstructure:"tab"`
}

type Export struct {
	Timezone string `mapstructure:"timezone"`
}

type Cache struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ------------------- defaults -------------------

var defaults = map[string]interface{}{
	"env":                          "development",
	"http.addr":                    ":8080",
	"app.url":                      "http://localhost:8080",
	"log.dir":                      "./logs",
	"store.driver":                 "mongo",
	"mongo.uri":                    "mongodb://localhost:27017",
	"mongo.database":               "athmageeth",
	"mongo.collection":             "registrations",
	"mongo.timeout":                "10s",
	"admin.password":               "",
	"admin.password_hash":          "",
	"admin.page_size":              10,
	"session.secret":               "",
	"session.encryption_key":       "",
	"session.ttl":                  "24h",
	"session.cookie_secure":        false,
	"registration.require_receipt": true,
	"receipts.driver":              "local",
	"receipts.dir":                 "./public/uploads/receipts",
	"receipts.base_url":            "/uploads/receipts",
	"receipts.max_bytes":           10 << 20,
	"s3.bucket":                    "",
	"s3.region":                    "ap-south-1",
	"s3.prefix":                    "receipts/",
	"s3.public_url":                "",
	"metrics.enabled":              false,
	"metrics.namespace":            "Athmageeth",
	"tracing.enabled":              false,
	"tracing.service":              "athmageeth-portal",
	"sheets.spreadsheet_id":        "",
	"sheets.credentials_file":      "",
	"sheets.tab":                   "Registrations",
	"export.timezone":              "Asia/Kolkata",
	"cache.ttl":                    "1m",
}

// Load resolves configuration. Values come, lowest priority first, from the
// built-in defaults, the optional config file, a .env file in the working
// directory and the process environment (mongo.uri <- MONGO_URI).
func Load(cfgFile string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first configuration problem that would stop the
// portal from serving safely.
func (c Config) Validate() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	switch len(c.Session.EncryptionKey) {
	case 0, 16, 24, 32:
	default:
		return errors.New("SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Receipts.Driver {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET must be set when RECEIPTS_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown receipts driver %q", c.Receipts.Driver)
	}
	if c.Admin.PageSize < 1 {
		return errors.New("ADMIN_PAGE_SIZE must be at least 1")
	}
	return nil
}
