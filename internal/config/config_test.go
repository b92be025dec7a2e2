// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-graph/pkg/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "bolt://localhost:7687", cfg.Store.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Store.Neo4j.Username)
	assert.Empty(t, cfg.Store.Neo4j.Password)
	ApplyFallbacks(&cfg)
	assert.Equal(t, "password", cfg.Store.Neo4j.Password)
	assert.Equal(t, types.BackendNeo4j, cfg.Store.Backend)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, 30*time.Second, cfg.Trials.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"neo4j_uri": "neo4j://graph:7687",
		"neo4j_username": "reader",
		"neo4j_password": "pw",
		"store_backend": "SQLite",
		"sqlite_path": "/tmp/g.db",
		"llm_api_key": "sk-test",
		"llm_api_base": "http://llm:8000/v1",
		"llm_temperature": 0.7,
		"cors_origins": ["http://localhost:3000"],
		"trials_base_url": "http://trials.test/api/v2/"
	}`)

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "neo4j://graph:7687", cfg.Store.Neo4j.URI)
	assert.Equal(t, "reader", cfg.Store.Neo4j.Username)
	assert.Equal(t, "pw", cfg.Store.Neo4j.Password)
	assert.Equal(t, types.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/g.db", cfg.Store.SQLitePath)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "http://llm:8000/v1", cfg.AI.APIBase)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "http://trials.test/api/v2", cfg.Trials.BaseURL)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "pubmed-graph.yaml", "neo4j_uri: bolt://yaml:7687\nserver_addr: \":8080\"\n")
	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bolt://yaml:7687", cfg.Store.Neo4j.URI)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{"neo4j_uri": "bolt://file:7687"}`)
	t.Setenv("PUBMED_GRAPH_NEO4J_URI", "bolt://env:7687")
	t.Setenv("PUBMED_GRAPH_NEO4J_PASSWORD", "from-env")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://env:7687", cfg.Store.Neo4j.URI)
	assert.Equal(t, "from-env", cfg.Store.Neo4j.Password)
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{"neo4j_uri": `)
	_, found, err := Load(path)
	require.Error(t, err)
	assert.True(t, found)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PUBMED_GRAPH_LLM_MODEL=local-model\n"), 0o644))
	t.Setenv("PUBMED_GRAPH_LLM_MODEL", "")
	os.Unsetenv("PUBMED_GRAPH_LLM_MODEL")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "local-model", os.Getenv("PUBMED_GRAPH_LLM_MODEL"))

	cfg, _, err := Load(filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Equal(t, "local-model", cfg.AI.Model)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "https://clinicaltrials.gov/api/v2", cfg.Trials.BaseURL)
}
