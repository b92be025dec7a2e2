package types

import "time"

// StoreBackend selects the graph store implementation.
type StoreBackend string

const (
	BackendNeo4j  StoreBackend = "neo4j"
	BackendSQLite StoreBackend = "sqlite"
)

// Neo4jConfig holds the graph database connection settings.
type Neo4jConfig struct {
	// URI is the bolt or neo4j URI (e.g. "bolt://localhost:7687").
	URI string `json:"neo4j_uri" yaml:"neo4j_uri"`

	// Username and Password are used for basic auth.
	Username string `json:"neo4j_username" yaml:"neo4j_username"`
	Password string `json:"neo4j_password,omitempty" yaml:"neo4j_password,omitempty"`

	// Database is the target database name. Empty uses the server default.
	Database string `json:"neo4j_database,omitempty" yaml:"neo4j_database,omitempty"`
}

// StoreConfig selects and configures the graph store.
type StoreConfig struct {
	// Backend is neo4j (default) or sqlite.
	Backend StoreBackend `json:"store_backend" yaml:"store_backend"`

	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`

	Neo4j Neo4jConfig `json:"neo4j" yaml:",inline"`
}

// AIConfig holds settings for the OpenAI-compatible chat endpoint used to
// explain search results.
type AIConfig struct {
	// APIKey is the authentication key for the API.
	APIKey string `json:"llm_api_key,omitempty" yaml:"llm_api_key,omitempty"`

	// APIBase overrides the API base URL (e.g. a self-hosted gateway).
	APIBase string `json:"llm_api_base,omitempty" yaml:"llm_api_base,omitempty"`

	// Model is the chat model identifier.
	Model string `json:"llm_model" yaml:"llm_model"`

	// Temperature is the sampling temperature (default 0.2).
	Temperature float32 `json:"llm_temperature" yaml:"llm_temperature"`
}

// ServerConfig holds settings for the HTTP search endpoint.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":5000").
	Addr string `json:"server_addr" yaml:"server_addr"`

	// AllowOrigins lists the CORS origins allowed to call the endpoint.
	AllowOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// TrialsConfig holds settings for the ClinicalTrials.gov client.
type TrialsConfig struct {
	// BaseURL is the v2 API base (e.g. "https://clinicaltrials.gov/api/v2").
	BaseURL string `json:"trials_base_url" yaml:"trials_base_url"`

	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"trials_timeout" yaml:"trials_timeout"`
}

// AppConfig groups every setting read from the configuration file.
type AppConfig struct {
	Store  StoreConfig  `json:"store" yaml:"store"`
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Server ServerConfig `json:"server" yaml:"server"`
	Trials TrialsConfig `json:"trials" yaml:"trials"`
}
