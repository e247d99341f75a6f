package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	flags := NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--env-file", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != defaultBaseURL || cfg.Timeout != defaultTimeout || cfg.RetryAttempts != defaultRetries {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.PersistSession {
		t.Fatal("expected session persistence on by default")
	}
	if _, _, ok := cfg.DriverPosition(); ok {
		t.Fatal("expected no driver position")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", `
base_url: http://file.example:8080
timeout: 5s
retry_attempts: 2
username: from-file
log_file: /tmp/file.log
`)
	envPath := writeFile(t, dir, "test.env", "TRANSPO_USERNAME=from-dotenv\nTRANSPO_RETRY_ATTEMPTS=4\nTRANSPO_PASSWORD=s3cret\n")

	flags := NewFlags("transpo")
	args := []string{"--config", configPath, "--env-file", envPath, "--base-url", "http://flag.example"}
	if err := flags.FlagSet().Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Load(lookupFrom(map[string]string{"TRANSPO_RETRY_ATTEMPTS": "6"}))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if cfg.BaseURL != "http://flag.example" {
		t.Fatalf("expected flag base url, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected file timeout, got %s", cfg.Timeout)
	}
	if cfg.RetryAttempts != 6 {
		t.Fatalf("expected process env to beat .env, got %d", cfg.RetryAttempts)
	}
	if cfg.Username != "from-dotenv" {
		t.Fatalf("expected .env username, got %q", cfg.Username)
	}
	if cfg.Password != "s3cret" {
		t.Fatalf("expected password from env, got %q", cfg.Password)
	}
	if cfg.LogFile != "/tmp/file.log" {
		t.Fatalf("expected file log path, got %q", cfg.LogFile)
	}
}

func TestLoad_PasswordIgnoredInFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", "password: leaked\n")

	flags := NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--config", configPath, "--env-file", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Password != "" {
		t.Fatalf("expected password to be ignored, got %q", cfg.Password)
	}
}

func TestLoad_ConfigFromEnvVariable(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "alt.yaml", "base_url: https://transpo.example\n")

	flags := NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--env-file", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Load(lookupFrom(map[string]string{"TRANSPO_CONFIG": configPath}))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != "https://transpo.example" {
		t.Fatalf("expected base url from file, got %q", cfg.BaseURL)
	}
}

func TestLoad_MissingExplicitFilesFail(t *testing.T) {
	dir := t.TempDir()

	flags := NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--config", filepath.Join(dir, "nope.yaml")}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := flags.Load(lookupFrom(nil)); err == nil {
		t.Fatal("expected error for missing config file")
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	flags = NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--env-file", filepath.Join(dir, "nope.env")}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := flags.Load(lookupFrom(nil)); err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestLoad_DriverPosition(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	flags := NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--env-file", "", "--driver-position", "6.93, 79.85"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Load(lookupFrom(nil))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	lat, lng, ok := cfg.DriverPosition()
	if !ok || lat != 6.93 || lng != 79.85 {
		t.Fatalf("unexpected driver position: %v,%v ok=%v", lat, lng, ok)
	}

	flags = NewFlags("transpo")
	if err := flags.FlagSet().Parse([]string{"--env-file", ""}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = flags.Load(lookupFrom(map[string]string{"TRANSPO_DRIVER_LATITUDE": "6.93"}))
	if err == nil {
		t.Fatal("expected error when only latitude is set")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.BaseURL = "localhost" }},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }},
		{"too many retries", func(c *Config) { c.RetryAttempts = maxRetries + 1 }},
		{"latitude range", func(c *Config) {
			lat, lng := 95.0, 10.0
			c.DriverLatitude, c.DriverLongitude = &lat, &lng
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %+v", cfg)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
