// Package config resolves server configuration from CLI flags, environment
// variables, and an optional .env file, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// ErrAuthMissing is returned when no Figma credential could be resolved
// from any of the three sources. Fatal at process start.
var ErrAuthMissing = errors.New("config: no Figma credential found (--token, --oauth-token, FIGMA_API_KEY, FIGMA_OAUTH_TOKEN, or .env)")

// OutputFormat enumerates the supported serialization formats.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

// Config is the fully resolved server configuration.
type Config struct {
	Token        string
	OAuth        bool
	Port         int // 0 means stdio transport
	OutputFormat OutputFormat
	DebugAddr    string // empty disables the debug broadcaster
}

// Flags holds the raw pflag-bound values before resolution.
type Flags struct {
	Token       string
	OAuthToken  string
	Port        int
	OutputFmt   string
	DebugAddr   string
	EnvPath     string
}

// Register binds this package's flags onto fs, mirroring the
// flag-per-concern layout kataras-figma-extractor's CLI uses.
func Register(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Token, "token", "", "Figma personal access token")
	fs.StringVar(&f.OAuthToken, "oauth-token", "", "Figma OAuth bearer token")
	fs.IntVar(&f.Port, "port", 0, "listen port for HTTP transport (stdio if unset)")
	fs.StringVar(&f.OutputFmt, "output-format", "yaml", "tool output format: yaml or json")
	fs.StringVar(&f.DebugAddr, "debug-addr", "", "address for the debug broadcaster (disabled if unset)")
	fs.StringVar(&f.EnvPath, "env", ".env", "path to a .env file to load")
	return f
}

// Resolve turns Flags plus the process environment into a Config,
// loading .env first so CLI flags and real env vars still take priority
// (godotenv.Load never overwrites an already-set variable).
func Resolve(f *Flags) (*Config, error) {
	if _, err := os.Stat(f.EnvPath); err == nil {
		if loadErr := godotenv.Load(f.EnvPath); loadErr != nil {
			return nil, fmt.Errorf("config: loading %s: %w", f.EnvPath, loadErr)
		}
	}

	cfg := &Config{
		Port:         f.Port,
		OutputFormat: normalizeFormat(f.OutputFmt),
		DebugAddr:    f.DebugAddr,
	}

	switch {
	case f.Token != "":
		cfg.Token = f.Token
	case f.OAuthToken != "":
		cfg.Token, cfg.OAuth = f.OAuthToken, true
	case os.Getenv("FIGMA_API_KEY") != "":
		cfg.Token = os.Getenv("FIGMA_API_KEY")
	case os.Getenv("FIGMA_OAUTH_TOKEN") != "":
		cfg.Token, cfg.OAuth = os.Getenv("FIGMA_OAUTH_TOKEN"), true
	default:
		return nil, ErrAuthMissing
	}

	return cfg, nil
}

func normalizeFormat(s string) OutputFormat {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatYAML
}
