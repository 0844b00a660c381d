package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalambet/csvchat/internal/dataset"
)

// memBackend is an in-memory ConfigBackend.
type memBackend map[string]any

func (m memBackend) GetString(key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	if s, ok := v.(string); ok {
		return s, true, nil
	}
	return "", true, nil
}

func (m memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	i, _ := v.(int)
	return i, true, nil
}

func (m memBackend) SetString(key, val string) error { m[key] = val; return nil }
func (m memBackend) SetInt(key string, val int) error  { m[key] = val; return nil }

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied when the backend is empty.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(memBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Dataset.Profile != "agri" {
		t.Errorf("Dataset.Profile = %q, want agri", cfg.Dataset.Profile)
	}
	if cfg.Dataset.Format != "csv" {
		t.Errorf("Dataset.Format = %q, want csv", cfg.Dataset.Format)
	}
	if cfg.Dataset.Delimiter != "," {
		t.Errorf("Dataset.Delimiter = %q, want ,", cfg.Dataset.Delimiter)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
	if cfg.MCP.Enabled {
		t.Error("MCP.Enabled = true, want false")
	}
	if len(cfg.Columns) != 0 {
		t.Errorf("Columns = %v, want empty", cfg.Columns)
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("CSVCHAT_SERVER_PORT", "9100")
	t.Setenv("CSVCHAT_DATASET_PATH", "/data/env.csv")
	t.Setenv("CSVCHAT_MCP_ENABLED", "true")
	t.Setenv("CSVCHAT_COLUMNS_DIVISION", "Vertical")
	t.Setenv("CSVCHAT_API_TOKEN", "s3cret")

	b := memBackend{"server.port": 5000, "dataset.path": "/data/file.csv"}
	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Dataset.Path != "/data/env.csv" {
		t.Errorf("Dataset.Path = %q, want /data/env.csv", cfg.Dataset.Path)
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
	if cfg.Columns["division"] != "Vertical" {
		t.Errorf("Columns[division] = %q, want Vertical", cfg.Columns["division"])
	}
	if cfg.Server.APIToken != "s3cret" {
		t.Errorf("Server.APIToken = %q, want s3cret", cfg.Server.APIToken)
	}
}

// TestEnvOverride_Invalid verifies an unparseable env value keeps the default.
func TestEnvOverride_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("CSVCHAT_SERVER_PORT", "eighty")
	t.Setenv("CSVCHAT_MCP_ENABLED", "maybe")

	cfg, err := loadWith(memBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.MCP.Enabled {
		t.Error("MCP.Enabled = true, want false")
	}
}

// TestSecretsIgnoredInBackend verifies secrets are only read from the environment.
func TestSecretsIgnoredInBackend(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(memBackend{"server.api_token": "from-file", "dataset.dsn": "file:x.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.APIToken != "" || cfg.Dataset.DSN != "" {
		t.Errorf("secrets read from backend: token=%q dsn=%q", cfg.Server.APIToken, cfg.Dataset.DSN)
	}
}

// TestYAMLParsing verifies that fields are read from a YAML file.
func TestYAMLParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "config.yaml", `
server:
  host: 0.0.0.0
  port: 5000
dataset:
  profile: movies
  path: /tmp/movies.csv
  delimiter: ";"
columns:
  rating: imdb_rating
mcp:
  enabled: true
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Dataset.Profile != "movies" {
		t.Errorf("Dataset.Profile = %q", cfg.Dataset.Profile)
	}
	if cfg.Dataset.Path != "/tmp/movies.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Dataset.Delimiter != ";" {
		t.Errorf("Dataset.Delimiter = %q", cfg.Dataset.Delimiter)
	}
	if cfg.Columns["rating"] != "imdb_rating" {
		t.Errorf("Columns[rating] = %q", cfg.Columns["rating"])
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if got := cfg.Addr(); got != "0.0.0.0:5000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:5000", got)
	}
}

// TestTOMLParsing verifies the file format follows the extension.
func TestTOMLParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "config.toml", `
[server]
port = 7000

[dataset]
format = "sql"
table = "sales"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Dataset.Format != "sql" || cfg.Dataset.Table != "sales" {
		t.Errorf("Dataset = %+v", cfg.Dataset)
	}
}

// TestMissingFile verifies a missing config file yields defaults.
func TestMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
}

func TestSetKey_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := SetKey(path, "server.port", "9001"); err != nil {
		t.Fatalf("SetKey(server.port): %v", err)
	}
	if err := SetKey(path, "dataset.path", "/srv/data.csv"); err != nil {
		t.Fatalf("SetKey(dataset.path): %v", err)
	}
	if err := SetKey(path, "mcp.enabled", "true"); err != nil {
		t.Fatalf("SetKey(mcp.enabled): %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Dataset.Path != "/srv/data.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
}

func TestSetKey_Errors(t *testing.T) {
	b := memBackend{}

	tests := []struct {
		key, value, want string
	}{
		{"server.port", "abc", "invalid integer"},
		{"mcp.enabled", "perhaps", "invalid bool"},
		{"server.api_token", "x", "cannot set secret"},
		{"proxy.model", "x", "unknown config key"},
	}
	for _, tt := range tests {
		err := setKey(b, tt.key, tt.value)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("setKey(%q) error = %v, want it to contain %q", tt.key, err, tt.want)
		}
	}
	if len(b) != 0 {
		t.Errorf("backend written on error: %v", b)
	}
}

func TestValidate(t *testing.T) {
	valid := defaults()
	valid.Dataset.Path = "data.csv"
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown profile", func(c *Config) { c.Dataset.Profile = "weather" }, "unknown profile"},
		{"missing path", func(c *Config) { c.Dataset.Path = "" }, "dataset path"},
		{"sql without dsn", func(c *Config) { c.Dataset.Format = "sql" }, "dataset dsn"},
		{"bad format", func(c *Config) { c.Dataset.Format = "xlsx" }, "invalid dataset format"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			c.Columns = map[string]string{}
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestHeaders(t *testing.T) {
	c := defaults()
	c.Columns["division"] = "Vertical"
	c.Columns["rating"] = ""

	h, err := c.Headers()
	if err != nil {
		t.Fatalf("Headers(): %v", err)
	}
	if h[dataset.Division] != "Vertical" {
		t.Errorf("Headers()[Division] = %q, want Vertical", h[dataset.Division])
	}

	c.Columns["budget"] = "Budget"
	if _, err := c.Headers(); !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Errorf("Headers() error = %v, want ErrUnknownColumn", err)
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	want := map[string]bool{"server.port": true, "dataset.path": true, "columns.zone": true, "columns.rating": true}
	for _, k := range keys {
		delete(want, k)
		if k == "server.api_token" || k == "dataset.dsn" {
			t.Errorf("ValidKeys() includes secret %q", k)
		}
	}
	if len(want) != 0 {
		t.Errorf("ValidKeys() missing %v", want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "CSVCHAT_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeTempConfig(t, ".env", key+"=from-dotenv\n")
	loadDotEnv(path)
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}

	// Missing files are ignored silently.
	loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
}
