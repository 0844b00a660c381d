package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kalambet/csvchat/internal/dataset"
	"github.com/kalambet/csvchat/internal/intent"
)

type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	// Columns maps a column name (zone, crop, rating, ...) to the header it
	// is read from. Empty entries keep the profile default.
	Columns map[string]string
	MCP     MCPConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host     string
	Port     int
	APIToken string
}

type DatasetConfig struct {
	Profile   string
	Format    string
	Path      string
	Delimiter string
	Driver    string
	DSN       string
	Table     string
}

type MCPConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level  string
	Format string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Dataset: DatasetConfig{
			Profile:   "agri",
			Format:    "csv",
			Delimiter: ",",
			Driver:    "sqlite",
			Table:     "records",
		},
		Columns: make(map[string]string),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the config file at path (the XDG default
// when empty), an optional .env file in the working directory, and
// CSVCHAT_* environment variables, in increasing order of precedence.
func Load(path string) (Config, error) {
	loadDotEnv(".env")
	if path == "" {
		path = DefaultPath()
	}
	return loadWith(newFileBackend(path))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already
// set in the environment.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "[WARN] could not read %s: %v. Ignoring it.\n", path, err)
	}
}

// Validate checks the settings needed to load a dataset and serve queries.
func (c Config) Validate() error {
	if _, err := intent.LookupProfile(c.Dataset.Profile); err != nil {
		return err
	}

	switch c.Dataset.Format {
	case "csv":
		if c.Dataset.Path == "" {
			return fmt.Errorf("missing required config: dataset path. " +
				"Set it via environment variable CSVCHAT_DATASET_PATH, the --data flag, " +
				"or `csvchat config set dataset.path <file>`")
		}
	case "sql":
		if c.Dataset.DSN == "" {
			return fmt.Errorf("missing required config: dataset dsn for format sql. " +
				"Set it via environment variable CSVCHAT_DATASET_DSN")
		}
		if c.Dataset.Table == "" {
			return fmt.Errorf("missing required config: dataset table for format sql")
		}
	default:
		return fmt.Errorf("invalid dataset format %q: want csv or sql", c.Dataset.Format)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.Log.Format)
	}
	return nil
}

// Headers converts the columns.* settings into header overrides for a
// dataset schema. Unknown column names are reported.
func (c Config) Headers() (map[dataset.Column]string, error) {
	out := make(map[dataset.Column]string, len(c.Columns))
	for name, header := range c.Columns {
		col, err := dataset.ParseColumn(name)
		if err != nil {
			return nil, err
		}
		out[col] = header
	}
	return out, nil
}

// Source describes where the dataset is loaded from.
func (c Config) Source() dataset.Source {
	return dataset.Source{
		Format:    c.Dataset.Format,
		Path:      c.Dataset.Path,
		Delimiter: c.Dataset.Delimiter,
		Driver:    c.Dataset.Driver,
		DSN:       c.Dataset.DSN,
		Table:     c.Dataset.Table,
	}
}

// Addr is the host:port the HTTP server listens on.
func (c Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
