// Package config loads the TOML configuration file shared by cmd/psmith and
// cmd/psmithd.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/parsesmith/internal/trace"
)

const (
	MinJWTSecretSize = 32
	MaxJWTSecretSize = 64
)

// TraceSink selects where recognizer trace output goes.
type TraceSink string

const (
	TraceSinkNone   TraceSink = "none"
	TraceSinkStdout TraceSink = "stdout"
	TraceSinkFile   TraceSink = "file"
)

// Config holds every setting the grammar toolkit needs, whether running as
// the one-shot/REPL CLI (cmd/psmith) or the HTTP daemon (cmd/psmithd).
// Fields are overridable by pflag flags on each binary.
type Config struct {
	// GrammarFile is the path to the grammar source file to load.
	GrammarFile string `toml:"grammar_file"`

	// Trace configures the trace.Sink the recognizers write to.
	Trace struct {
		Sink TraceSink `toml:"sink"`
		Path string    `toml:"path"`
	} `toml:"trace"`

	// HTTP configures cmd/psmithd.
	HTTP struct {
		BindAddr  string `toml:"bind_addr"`
		JWTSecret string `toml:"jwt_secret"`
	} `toml:"http"`

	// DataDir is where internal/store keeps its sqlite database file.
	DataDir string `toml:"data_dir"`
}

// FillDefaults returns a copy of cfg with unset fields set to their
// defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.Trace.Sink == "" {
		out.Trace.Sink = TraceSinkNone
	}
	if out.HTTP.BindAddr == "" {
		out.HTTP.BindAddr = ":8080"
	}
	if out.DataDir == "" {
		out.DataDir = "./data"
	}
	return out
}

// Validate returns an error if cfg has invalid or missing required field
// values. Call it on the result of FillDefaults if defaults are in use.
func (cfg Config) Validate() error {
	if cfg.GrammarFile == "" {
		return fmt.Errorf("grammar_file: must be set")
	}
	switch cfg.Trace.Sink {
	case TraceSinkNone, TraceSinkStdout:
		// no further fields required
	case TraceSinkFile:
		if cfg.Trace.Path == "" {
			return fmt.Errorf("trace.path: must be set when trace.sink is %q", TraceSinkFile)
		}
	default:
		return fmt.Errorf("trace.sink: unknown value %q", cfg.Trace.Sink)
	}
	if cfg.HTTP.JWTSecret != "" {
		if len(cfg.HTTP.JWTSecret) < MinJWTSecretSize {
			return fmt.Errorf("http.jwt_secret: must be at least %d bytes, but is %d", MinJWTSecretSize, len(cfg.HTTP.JWTSecret))
		}
		if len(cfg.HTTP.JWTSecret) > MaxJWTSecretSize {
			return fmt.Errorf("http.jwt_secret: must be no more than %d bytes, but is %d", MaxJWTSecretSize, len(cfg.HTTP.JWTSecret))
		}
	}
	return nil
}

// BuildSink constructs the trace.Sink that cfg.Trace describes, along with a
// close function that must be called before exit (it flushes and releases
// the file sink; for the other destinations it is a no-op).
func (cfg Config) BuildSink() (trace.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Trace.Sink {
	case TraceSinkStdout:
		return trace.NewWriterSink(os.Stdout), noop, nil
	case TraceSinkFile:
		fs, err := trace.NewFileSink(cfg.Trace.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Close, nil
	default:
		return trace.NullSink{}, noop, nil
	}
}

// Load reads and parses a TOML config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
