package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "psmith.toml")
	src := `
grammar_file = "grammars/expr.txt"
data_dir = "/var/lib/psmith"

[trace]
sink = "file"
path = "/var/log/psmith/trace.log"

[http]
bind_addr = ":9090"
jwt_secret = "0123456789abcdef0123456789abcdef"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "grammars/expr.txt", cfg.GrammarFile)
	assert.Equal(t, "/var/lib/psmith", cfg.DataDir)
	assert.Equal(t, TraceSinkFile, cfg.Trace.Sink)
	assert.Equal(t, "/var/log/psmith/trace.log", cfg.Trace.Path)
	assert.Equal(t, ":9090", cfg.HTTP.BindAddr)
}

func TestFillDefaults(t *testing.T) {
	cfg := Config{GrammarFile: "g.txt"}
	filled := cfg.FillDefaults()

	assert.Equal(t, TraceSinkNone, filled.Trace.Sink)
	assert.Equal(t, ":8080", filled.HTTP.BindAddr)
	assert.Equal(t, "./data", filled.DataDir)
}

func TestValidate_RequiresGrammarFile(t *testing.T) {
	err := Config{}.Validate()
	assert.Error(t, err)
}

func TestValidate_FileSinkRequiresPath(t *testing.T) {
	cfg := Config{GrammarFile: "g.txt"}
	cfg.Trace.Sink = TraceSinkFile
	assert.Error(t, cfg.Validate())

	cfg.Trace.Path = "trace.log"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_JWTSecretLength(t *testing.T) {
	cfg := Config{GrammarFile: "g.txt"}.FillDefaults()
	cfg.HTTP.JWTSecret = "tooshort"
	assert.Error(t, cfg.Validate())

	cfg.HTTP.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/psmith.toml")
	assert.Error(t, err)
}

func TestBuildSink_FileWritesToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	cfg := Config{GrammarFile: "g.txt"}
	cfg.Trace.Sink = TraceSinkFile
	cfg.Trace.Path = path

	sink, closeSink, err := cfg.BuildSink()
	require.NoError(t, err)

	sink.Write("one row")
	require.NoError(t, closeSink())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one row\n", string(data))
}

func TestBuildSink_NoneDiscards(t *testing.T) {
	cfg := Config{GrammarFile: "g.txt"}.FillDefaults()

	sink, closeSink, err := cfg.BuildSink()
	require.NoError(t, err)
	assert.NotPanics(t, func() { sink.Write("discarded") })
	assert.NoError(t, closeSink())
}
