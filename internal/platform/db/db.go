package db

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	driverName        = "mysql"
	DefaultConfigPath = "config/config.yaml"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig selects the kv backend: file | mysql | memory
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Dir      string         `yaml:"dir"`
	Database DatabaseConfig `yaml:"database"`
}

type AuthConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PasscodeHash string        `yaml:"passcode_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// ReportConfig controls number formatting of the text report.
type ReportConfig struct {
	Locale   string `yaml:"locale"` // BCP 47, e.g. "ko"
	Currency string `yaml:"currency"`
}

type Config struct {
	Version     string        `yaml:"version"`
	Mode        string        `yaml:"mode"`
	Timezone    string        `yaml:"timezone"`
	Server      ServerConfig  `yaml:"server"`
	Certificate Certs         `yaml:"certificate"`
	Storage     StorageConfig `yaml:"storage"`
	Auth        AuthConfig    `yaml:"auth"`
	Report      ReportConfig  `yaml:"report"`
}

// LoadConfig reads the YAML file, then lets .env / CARE_* variables override
// secrets and paths. A missing config file is not an error: defaults apply.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := defaults()
	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:  "1.0",
		Mode:     "release",
		Timezone: "Local",
		Server:   ServerConfig{Addr: ":8080"},
		Storage:  StorageConfig{Driver: "file", Dir: "data"},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Report:   ReportConfig{Locale: "ko"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CARE_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("CARE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CARE_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("CARE_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("CARE_DATA_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("CARE_DB_PASSWORD"); v != "" {
		cfg.Storage.Database.Password = v
	}
	if v := os.Getenv("CARE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CARE_PASSCODE_HASH"); v != "" {
		cfg.Auth.PasscodeHash = v
	}
	if v := os.Getenv("CARE_AUTH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.Enabled = b
		}
	}
}

// Location resolves the configured time zone; unknown names fall back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// single user: a handful of connections is plenty
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
