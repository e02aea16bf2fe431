package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/store"
)

const (
	EnvAPIURL         = "FOODLENS_API_URL"
	EnvRequestTimeout = "FOODLENS_REQUEST_TIMEOUT"

	DefaultRequestTimeout = 30 * time.Second
)

// Flags are the command-line values that take precedence over everything
// else. Empty means unset.
type Flags struct {
	APIURL  string
	Verbose bool
}

type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	Verbose        bool
}

// LoadDotEnv reads path (".env" when empty) into the process environment.
// A missing file is not an error; existing variables are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Resolve applies flag > environment > stored config > default.
func Resolve(flags Flags, stored map[string]string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Config{
		APIURL:         api.DefaultBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		Verbose:        flags.Verbose,
	}

	cfg.APIURL = first(flags.APIURL, getenv(EnvAPIURL), stored[store.ConfigAPIURL], api.DefaultBaseURL)
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return Config{}, fmt.Errorf("invalid api url %q (expected http:// or https://)", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if raw := first(getenv(EnvRequestTimeout), stored[store.ConfigRequestTimeout]); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid request timeout %q", raw)
		}
		cfg.RequestTimeout = d
	}
	return cfg, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// NewLogger returns the text logger used for diagnostics on stderr.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
