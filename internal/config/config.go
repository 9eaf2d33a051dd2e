// Package config loads runtime startup configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 5555
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "bloppost"
	defaultDBCharset  = "utf8mb4"
	defaultStaticDir  = "./static"
	defaultSessionTTL = 720 // hours
)

// Login identifier matching policies.
const (
	LoginIdentifierAny   = "any"   // email first, then username
	LoginIdentifierEmail = "email" // email column only
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	DSN            string         `yaml:"dsn"` // MySQL DSN, overrides Database
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"` // empty disables rate limiting
	Env            string         `yaml:"env"`       // "development" | "production"
	JWTSecret      string         `yaml:"jwt_secret"`
	SessionTTL     int            `yaml:"session_ttl_hours"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Auth           AuthConfig     `yaml:"auth"`
	Paths          PathsConfig    `yaml:"paths"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

type AuthConfig struct {
	// LoginIdentifier selects how the login identifier is matched:
	// "any" (default) or "email".
	LoginIdentifier string `yaml:"login_identifier"`
}

type PathsConfig struct {
	Static string `yaml:"static"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Load reads the YAML config at path. A missing file yields pure defaults.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = defaultEnv
	}
	if c.Database.Host == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = defaultDBUser
	}
	if c.Database.Password == "" {
		c.Database.Password = defaultDBPassword
	}
	if c.Database.Name == "" {
		c.Database.Name = defaultDBName
	}
	if c.Database.Charset == "" {
		c.Database.Charset = defaultDBCharset
	}
	if strings.TrimSpace(c.DSN) == "" {
		c.DSN = c.Database.buildDSN()
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaultSessionTTL
	}
	switch strings.ToLower(strings.TrimSpace(c.Auth.LoginIdentifier)) {
	case LoginIdentifierEmail:
		c.Auth.LoginIdentifier = LoginIdentifierEmail
	default:
		c.Auth.LoginIdentifier = LoginIdentifierAny
	}
	if strings.TrimSpace(c.Paths.Static) == "" {
		c.Paths.Static = defaultStaticDir
	}
}

func (d DatabaseConfig) buildDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name, d.Charset)
}
