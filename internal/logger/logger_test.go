// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsCredentialKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core)

	log.Info("connecting", "uri", "bolt://localhost:7687", "neo4j_password", "hunter2", "llm_api_key", "sk-123")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "bolt://localhost:7687", fields["uri"])
	assert.Equal(t, redacted, fields["neo4j_password"])
	assert.Equal(t, redacted, fields["llm_api_key"])
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWithCore(core).With("component", "ingest", "token", "abc")

	log.Warn("skipped record", "pmid", "123")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ingest", fields["component"])
	assert.Equal(t, redacted, fields["token"])
	assert.Equal(t, "123", fields["pmid"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestOddKeyValueCountKeepsTrailingKey(t *testing.T) {
	got := sanitizeKVs([]any{"a", 1, "dangling"})
	assert.Equal(t, []any{"a", 1, "dangling"}, got)
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error("nothing to see", "k", "v")
	log.Sync()
}
