// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads pubmed-graph settings from a flat JSON, YAML, or TOML
// file, PUBMED_GRAPH_* environment variables, and built-in defaults, in
// that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.json"

// DefaultNeo4jPassword is used when neither the config, the environment,
// nor the secrets directory supplies one.
const DefaultNeo4jPassword = "password"

// EnvPrefix prefixes every environment override, e.g. PUBMED_GRAPH_NEO4J_URI.
const EnvPrefix = "PUBMED_GRAPH"

// Recognized keys.
const (
	KeyNeo4jURI       = "neo4j_uri"
	KeyNeo4jUsername  = "neo4j_username"
	KeyNeo4jPassword  = "neo4j_password"
	KeyNeo4jDatabase  = "neo4j_database"
	KeyStoreBackend   = "store_backend"
	KeySQLitePath     = "sqlite_path"
	KeyLLMAPIKey      = "llm_api_key"
	KeyLLMAPIBase     = "llm_api_base"
	KeyLLMModel       = "llm_model"
	KeyLLMTemperature = "llm_temperature"
	KeyServerAddr     = "server_addr"
	KeyCORSOrigins    = "cors_origins"
	KeyTrialsBaseURL  = "trials_base_url"
	KeyTrialsTimeout  = "trials_timeout"
)

var defaults = map[string]any{
	KeyNeo4jURI:       "bolt://localhost:7687",
	KeyNeo4jUsername:  "neo4j",
	KeyNeo4jPassword:  "",
	KeyNeo4jDatabase:  "",
	KeyStoreBackend:   string(types.BackendNeo4j),
	KeySQLitePath:     "data/pubmed-graph.db",
	KeyLLMAPIKey:      "",
	KeyLLMAPIBase:     "",
	KeyLLMModel:       "gpt-4o",
	KeyLLMTemperature: 0.2,
	KeyServerAddr:     ":5000",
	KeyCORSOrigins:    []string{"*"},
	KeyTrialsBaseURL:  "https://clinicaltrials.gov/api/v2",
	KeyTrialsTimeout:  "30s",
}

// Default returns the built-in defaults with environment overrides applied.
func Default() types.AppConfig {
	cfg, _, _ := load(newViper(), "")
	return cfg
}

// Load reads path (DefaultPath when empty) and applies environment
// overrides. found is false when the file does not exist; the defaults are
// returned in that case and err is nil. A file that exists but cannot be
// parsed is an error.
func Load(path string) (cfg types.AppConfig, found bool, err error) {
	if path == "" {
		path = DefaultPath
	}
	return load(newViper(), path)
}

// ApplyFallbacks fills settings that may also come from the secrets
// directory and so have no viper default.
func ApplyFallbacks(cfg *types.AppConfig) {
	if cfg.Store.Neo4j.Password == "" {
		cfg.Store.Neo4j.Password = DefaultNeo4jPassword
	}
}

// LoadDotEnv loads KEY=value pairs from each file into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper, path string) (types.AppConfig, bool, error) {
	found := false
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			found = true
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return types.AppConfig{}, true, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return types.AppConfig{}, false, fmt.Errorf("checking config %s: %w", path, err)
		}
	}

	cfg := types.AppConfig{
		Store: types.StoreConfig{
			Backend:    types.StoreBackend(strings.ToLower(v.GetString(KeyStoreBackend))),
			SQLitePath: v.GetString(KeySQLitePath),
			Neo4j: types.Neo4jConfig{
				URI:      v.GetString(KeyNeo4jURI),
				Username: v.GetString(KeyNeo4jUsername),
				Password: v.GetString(KeyNeo4jPassword),
				Database: v.GetString(KeyNeo4jDatabase),
			},
		},
		AI: types.AIConfig{
			APIKey:      v.GetString(KeyLLMAPIKey),
			APIBase:     v.GetString(KeyLLMAPIBase),
			Model:       v.GetString(KeyLLMModel),
			Temperature: float32(v.GetFloat64(KeyLLMTemperature)),
		},
		Server: types.ServerConfig{
			Addr:         v.GetString(KeyServerAddr),
			AllowOrigins: v.GetStringSlice(KeyCORSOrigins),
		},
		Trials: types.TrialsConfig{
			BaseURL: strings.TrimRight(v.GetString(KeyTrialsBaseURL), "/"),
			Timeout: v.GetDuration(KeyTrialsTimeout),
		},
	}
	return cfg, found, nil
}
