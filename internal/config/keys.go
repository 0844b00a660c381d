package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kalambet/csvchat/internal/dataset"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "CSVCHAT_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "CSVCHAT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "CSVCHAT_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "dataset.profile", typ: kString, env: "CSVCHAT_DATASET_PROFILE",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Profile = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Profile },
	},
	{
		key: "dataset.format", typ: kString, env: "CSVCHAT_DATASET_FORMAT",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Format = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Format },
	},
	{
		key: "dataset.path", typ: kString, env: "CSVCHAT_DATASET_PATH",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Path },
	},
	{
		key: "dataset.delimiter", typ: kString, env: "CSVCHAT_DATASET_DELIMITER",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Delimiter = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Delimiter },
	},
	{
		key: "dataset.driver", typ: kString, env: "CSVCHAT_DATASET_DRIVER",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Driver = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Driver },
	},
	{
		key: "dataset.dsn", typ: kString, env: "CSVCHAT_DATASET_DSN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Dataset.DSN = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.DSN },
	},
	{
		key: "dataset.table", typ: kString, env: "CSVCHAT_DATASET_TABLE",
		apply:   func(cfg *Config, v any) { cfg.Dataset.Table = v.(string) },
		extract: func(cfg Config) any { return cfg.Dataset.Table },
	},
	{
		key: "mcp.enabled", typ: kBool, env: "CSVCHAT_MCP_ENABLED",
		apply:   func(cfg *Config, v any) { cfg.MCP.Enabled = v.(bool) },
		extract: func(cfg Config) any { return cfg.MCP.Enabled },
	},
	{
		key: "log.level", typ: kString, env: "CSVCHAT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "log.format", typ: kString, env: "CSVCHAT_LOG_FORMAT",
		apply:   func(cfg *Config, v any) { cfg.Log.Format = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Format },
	},
}

// One columns.<name> key per dataset column.
func init() {
	for _, c := range dataset.Columns() {
		name := c.String()
		specs = append(specs, keySpec{
			key: "columns." + name, typ: kString, env: "CSVCHAT_COLUMNS_" + strings.ToUpper(name),
			apply:   func(cfg *Config, v any) { cfg.Columns[name] = v.(string) },
			extract: func(cfg Config) any { return cfg.Columns[name] },
		})
	}
}

func (t keyType) String() string {
	switch t {
	case kInt:
		return "integer"
	case kBool:
		return "bool"
	}
	return "string"
}

// parse converts raw text to the key's Go type.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		return strconv.Atoi(strings.TrimSpace(raw))
	case kBool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	}
	return raw, nil
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		if s.typ == kInt {
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
			continue
		}

		raw, ok, err := b.GetString(s.key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.key, err)
		}
		if !ok || (raw == "" && s.typ != kString) {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from config key %s=%q: %v. Using default value.\n", s.typ, s.key, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if s.env == "" || raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from env var %s=%q: %v. Using default value.\n", s.typ, s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
