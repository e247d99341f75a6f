// Package config resolves runtime settings. Sources are applied in
// order: defaults, YAML file, .env file, TRANSPO_* environment, flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"transpo-cli/service"
)

const (
	envPrefix      = "TRANSPO_"
	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 12 * time.Second
	defaultRetries = 3
	maxRetries     = 10
)

type Config struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"-"`
	LogFile         string        `yaml:"log_file"`
	PersistSession  bool          `yaml:"persist_session"`
	DriverLatitude  *float64      `yaml:"driver_latitude"`
	DriverLongitude *float64      `yaml:"driver_longitude"`
}

func Default() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		Timeout:        defaultTimeout,
		RetryAttempts:  defaultRetries,
		PersistSession: true,
	}
}

// DriverPosition returns the configured fixed position, if both
// coordinates are set.
func (c Config) DriverPosition() (float64, float64, bool) {
	if c.DriverLatitude == nil || c.DriverLongitude == nil {
		return 0, 0, false
	}
	return *c.DriverLatitude, *c.DriverLongitude, true
}

func (c Config) Validate() error {
	u, err := url.ParseRequestURI(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RetryAttempts < 1 || c.RetryAttempts > maxRetries {
		return fmt.Errorf("retry_attempts must be between 1 and %d, got %d", maxRetries, c.RetryAttempts)
	}
	if (c.DriverLatitude == nil) != (c.DriverLongitude == nil) {
		return errors.New("driver_latitude and driver_longitude must be set together")
	}
	if lat, lng, ok := c.DriverPosition(); ok {
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return fmt.Errorf("driver position %.5f,%.5f is out of range", lat, lng)
		}
	}
	return nil
}

// DefaultPath is <UserConfigDir>/transpo-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "transpo-cli", "config.yaml"), nil
}

// LoadFile overlays the YAML file at path onto cfg. A missing file is
// an error only when required is true.
func LoadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays TRANSPO_* variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(envPrefix + key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	if v, ok := get("BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get("RETRY_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRETRY_ATTEMPTS: %w", envPrefix, err)
		}
		cfg.RetryAttempts = n
	}
	if v, ok := get("USERNAME"); ok {
		cfg.Username = v
	}
	if v, ok := lookup(envPrefix + "PASSWORD"); ok && v != "" {
		cfg.Password = v
	}
	if v, ok := get("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := get("PERSIST_SESSION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPERSIST_SESSION: %w", envPrefix, err)
		}
		cfg.PersistSession = b
	}
	for key, target := range map[string]**float64{
		"DRIVER_LATITUDE":  &cfg.DriverLatitude,
		"DRIVER_LONGITUDE": &cfg.DriverLongitude,
	} {
		if v, ok := get(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*target = &f
		}
	}
	return nil
}

// Flags holds the command line surface.
type Flags struct {
	set *pflag.FlagSet

	configPath     string
	envFile        string
	baseURL        string
	timeout        time.Duration
	retryAttempts  int
	username       string
	logFile        string
	driverPosition string
	persistSession bool
}

func NewFlags(name string) *Flags {
	f := &Flags{set: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	def := Default()
	f.set.SetOutput(io.Discard)
	f.set.StringVar(&f.configPath, "config", "", "path to a YAML config file (default: $TRANSPO_CONFIG or <config dir>/transpo-cli/config.yaml)")
	f.set.StringVar(&f.envFile, "env-file", ".env", "dotenv file with TRANSPO_* variables")
	f.set.StringVar(&f.baseURL, "base-url", def.BaseURL, "backend base URL")
	f.set.DurationVar(&f.timeout, "timeout", def.Timeout, "per-request timeout")
	f.set.IntVar(&f.retryAttempts, "retry-attempts", def.RetryAttempts, "attempts for idempotent requests")
	f.set.StringVarP(&f.username, "user", "u", "", "username to prefill on the login screen")
	f.set.StringVar(&f.logFile, "log-file", "", "write JSON log records to this file")
	f.set.StringVar(&f.driverPosition, "driver-position", "", "fixed driver position as lat,lng")
	f.set.BoolVar(&f.persistSession, "persist-session", def.PersistSession, "remember the login between runs")
	return f
}

// FlagSet exposes the flags so a command tree can adopt them.
func (f *Flags) FlagSet() *pflag.FlagSet {
	return f.set
}

// Load resolves the final configuration. lookup reads the process
// environment; values it has win over the .env file.
func (f *Flags) Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	path, required := f.configPath, true
	if path == "" {
		if v, ok := lookup(envPrefix + "CONFIG"); ok && strings.TrimSpace(v) != "" {
			path = strings.TrimSpace(v)
		} else {
			def, err := DefaultPath()
			if err != nil {
				return Config{}, err
			}
			path, required = def, false
		}
	}
	if err := LoadFile(&cfg, path, required); err != nil {
		return Config{}, err
	}

	dotenv, err := readDotenv(f.envFile, f.set.Changed("env-file"))
	if err != nil {
		return Config{}, err
	}
	merged := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := ApplyEnv(&cfg, merged); err != nil {
		return Config{}, err
	}

	if err := f.apply(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) error {
	if f.set.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if f.set.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if f.set.Changed("retry-attempts") {
		cfg.RetryAttempts = f.retryAttempts
	}
	if f.set.Changed("user") {
		cfg.Username = f.username
	}
	if f.set.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if f.set.Changed("persist-session") {
		cfg.PersistSession = f.persistSession
	}
	if f.set.Changed("driver-position") {
		lat, lng, err := service.ParseCoordinates(f.driverPosition)
		if err != nil {
			return fmt.Errorf("--driver-position: %w", err)
		}
		cfg.DriverLatitude, cfg.DriverLongitude = &lat, &lng
	}
	return nil
}

func readDotenv(path string, required bool) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}
